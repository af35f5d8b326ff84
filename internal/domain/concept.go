package domain

// ReferenceAttachment is user-supplied context passed through to prompts.
type ReferenceAttachment struct {
	ID              string `json:"id"`
	Data            string `json:"data,omitempty"`
	MimeType        string `json:"mimeType,omitempty"`
	FileName        string `json:"fileName"`
	UserInstruction string `json:"userInstruction"`
}

// DesignBrief is the structured description of a design task.
type DesignBrief struct {
	Subject         string                `json:"subject"`
	Instructions    string                `json:"instructions"`
	EssentialInfo   string                `json:"essentialInfo"`
	TargetAudience  string                `json:"targetAudience"`
	Goal            string                `json:"goal"`
	Differentiation string                `json:"differentiation"`
	Platforms       []string              `json:"platforms"`
	CoreMessage     string                `json:"coreMessage"`
	CallToAction    string                `json:"callToAction"`
	Attachments     []ReferenceAttachment `json:"attachments"`
}

// AIConcept is one proposed design direction. ImageURL holds a data URI when
// image generation succeeded.
type AIConcept struct {
	Title                  string `json:"title"`
	VisualDescription      string `json:"visualDescription"`
	Headline               string `json:"headline"`
	ColorPaletteSuggestion string `json:"colorPaletteSuggestion"`
	Rationale              string `json:"rationale"`
	ImageGenerationPrompt  string `json:"imageGenerationPrompt"`
	ImageURL               string `json:"imageUrl,omitempty"`
}

// ConceptEdits are the changes requested for a revision.
type ConceptEdits struct {
	NewHeadline      string `json:"newHeadline"`
	NewEssentialInfo string `json:"newEssentialInfo"`
	UserInstructions string `json:"userInstructions"`
	AspectRatio      string `json:"aspectRatio"`
	ImageSize        string `json:"imageSize"`
}

// Revision is the result of revising a concept. UpdatedPrompt feeds the next revision.
type Revision struct {
	ImageURL      string `json:"imageUrl"`
	UpdatedPrompt string `json:"updatedPrompt"`
}

// AutoFillContext is the partial brief used to suggest a single field value.
type AutoFillContext struct {
	Subject       string `json:"subject"`
	Instructions  string `json:"instructions"`
	EssentialInfo string `json:"essentialInfo"`
}
