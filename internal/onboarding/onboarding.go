// Package onboarding holds the first-run walkthrough and the about text
// shown on the info screen.
package onboarding

// Slide is one onboarding page.
type Slide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Slides returns the walkthrough in display order.
func Slides() []Slide {
	return []Slide{
		{
			Title: "Hybrid Intelligence",
			Body:  "Powered by CNN and Vision Transformers to analyze Puyat Durian texture and structure with 98% accuracy.",
		},
		{
			Title: "Thorn Analysis",
			Body:  "For best results, ensure the durian is well-lit. Our AI focuses on thorn density and color patterns.",
		},
		{
			Title: "Davao Standards",
			Body:  "Specifically calibrated for Puyat variety standards in the Davao Region for local farmers and traders.",
		},
	}
}

// About is the info screen's description of the app.
const About = "Hybrid CNN-ViT ripeness assessment for Puyat Durian."

// Privacy describes where inference runs.
const Privacy = "To protect farmer data and ensure speed in remote Davao orchards, all AI inference happens locally. No internet required for assessment."

// ModelLayer describes one stage of the assessment model.
type ModelLayer struct {
	Short string `json:"short"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// ModelArchitecture lists the stages of the hybrid CNN-ViT model.
func ModelArchitecture() []ModelLayer {
	return []ModelLayer{
		{Short: "CNN", Name: "Local Feature Analysis", Role: "Extracts thorn density and microscopic surface patterns unique to Puyat."},
		{Short: "ViT", Name: "Global Context Analysis", Role: "Uses self-attention to assess the overall fruit shape and color maturity."},
	}
}
