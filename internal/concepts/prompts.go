package concepts

import (
	"fmt"
	"strings"

	"smartstudio/internal/domain"
	"smartstudio/internal/providers/prompt"
)

var conceptSchema = &prompt.Schema{
	Type: prompt.TypeArray,
	Items: &prompt.Schema{
		Type: prompt.TypeObject,
		Properties: map[string]*prompt.Schema{
			"title":                  {Type: prompt.TypeString, Description: "Creative Title (Hebrew)"},
			"visualDescription":      {Type: prompt.TypeString, Description: "Detailed visual description (Hebrew)"},
			"headline":               {Type: prompt.TypeString, Description: "Main Copy/Headline to appear on image (Hebrew)"},
			"colorPaletteSuggestion": {Type: prompt.TypeString, Description: "Color palette and mood (Hebrew)"},
			"rationale":              {Type: prompt.TypeString, Description: "Why this works for the brief (Hebrew)"},
			"imageGenerationPrompt":  {Type: prompt.TypeString, Description: "Detailed English prompt. MUST include: displaying the Hebrew text 'HEADLINE'."},
		},
		Required: []string{"title", "headline", "imageGenerationPrompt", "rationale", "visualDescription", "colorPaletteSuggestion"},
	},
}

func buildConceptPrompt(b *domain.DesignBrief) string {
	sb := &strings.Builder{}
	sb.WriteString("Role: Expert Creative Director for a high-end international design agency.\n")
	fmt.Fprintf(sb, "Task: Create %d distinct, high-impact graphic design concepts based on the client brief.\n\n", ConceptCount)

	sb.WriteString("Brief Data:\n")
	fmt.Fprintf(sb, "Subject: %s\n", b.Subject)
	fmt.Fprintf(sb, "Instructions: %s\n", b.Instructions)
	fmt.Fprintf(sb, "Info: %s\n", b.EssentialInfo)
	fmt.Fprintf(sb, "Target: %s\n", b.TargetAudience)
	fmt.Fprintf(sb, "Goal: %s\n", b.Goal)
	fmt.Fprintf(sb, "Differentiation: %s\n", b.Differentiation)
	fmt.Fprintf(sb, "Core message: %s\n", b.CoreMessage)
	fmt.Fprintf(sb, "Call to action: %s\n", b.CallToAction)
	fmt.Fprintf(sb, "Platforms: %s\n", strings.Join(b.Platforms, ", "))
	fmt.Fprintf(sb, "Attachments: %s\n\n", describeAttachments(b.Attachments))

	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Language: All output fields (title, visualDescription, headline, colorPaletteSuggestion, rationale) MUST be in Hebrew.\n")
	sb.WriteString("2. EXCEPTION: 'imageGenerationPrompt' MUST be in English for the image generator.\n")
	sb.WriteString("3. TEXT RENDERING: The visual design MUST include the exact Hebrew headline text visible in the image.\n")
	sb.WriteString("4. STYLE: Modern, Trendy, Commercial, Clean, High-End.\n")
	sb.WriteString("5. IN THE 'imageGenerationPrompt': explicitly instruct to write the text using actual Hebrew characters, ")
	sb.WriteString("in the form \"A poster design displaying the Hebrew text 'THE_HEBREW_HEADLINE' in [Specific Font Style] typography\", ")
	sb.WriteString("and include details on lighting and composition.\n\n")
	fmt.Fprintf(sb, "Structure the response as a JSON array of exactly %d concepts.", ConceptCount)
	return sb.String()
}

func buildRewritePrompt(original string, edits domain.ConceptEdits, attachments []domain.ReferenceAttachment) string {
	sb := &strings.Builder{}
	sb.WriteString("Act as an Expert Prompt Engineer.\n")
	fmt.Fprintf(sb, "ORIGINAL PROMPT: %q\n\n", original)
	sb.WriteString("USER REQUESTED CHANGES:\n")
	fmt.Fprintf(sb, "- New Headline Text (Hebrew): %q\n", edits.NewHeadline)
	if info := strings.TrimSpace(edits.NewEssentialInfo); info != "" {
		fmt.Fprintf(sb, "- Updated Essential Info: %q\n", info)
	}
	fmt.Fprintf(sb, "- Visual Edits: %q\n", edits.UserInstructions)
	if len(attachments) > 0 {
		fmt.Fprintf(sb, "- Reference Attachments: %s\n", describeAttachments(attachments))
	}
	sb.WriteString("\nTASK: Rewrite the English prompt to incorporate these changes naturally. ")
	sb.WriteString("Keep the style and composition of the original prompt and change only what the user asked for.\n\n")
	sb.WriteString("CRITICAL REQUIREMENTS:\n")
	fmt.Fprintf(sb, "1. The prompt MUST explicitly instruct the image generator to render the specific Hebrew text %q, ", edits.NewHeadline)
	fmt.Fprintf(sb, "in the form \"...featuring the Hebrew text '%s' written in clear, bold typography...\".\n\n", edits.NewHeadline)
	sb.WriteString("OUTPUT: The new English prompt only.")
	return sb.String()
}

// fallbackRewrite never fails and is used whenever the rewrite call does.
func fallbackRewrite(original string, edits domain.ConceptEdits) string {
	return original + ". Updated with Hebrew headline '" + edits.NewHeadline + "' prominently displayed. " + edits.UserInstructions
}

var autoFillLabels = map[string]string{
	"targetAudience":  "קהל יעד",
	"goal":            "מטרה עסקית",
	"differentiation": "ייחוד מותגי",
	"callToAction":    "הנעה לפעולה",
	"coreMessage":     "מסר מרכזי",
}

// FieldLabel returns the Hebrew label for a brief field, or the field itself.
func FieldLabel(field string) string {
	if label, ok := autoFillLabels[field]; ok {
		return label
	}
	return field
}

func buildAutoFillPrompt(field string, c domain.AutoFillContext) string {
	sb := &strings.Builder{}
	sb.WriteString("CONTEXT:\n")
	fmt.Fprintf(sb, "Subject: %s\n", c.Subject)
	fmt.Fprintf(sb, "Instructions: %s\n", c.Instructions)
	fmt.Fprintf(sb, "Essential Info: %s\n\n", c.EssentialInfo)
	sb.WriteString("TASK:\n")
	sb.WriteString("You are a world-class creative director at a top design studio.\n")
	fmt.Fprintf(sb, "Your goal is to provide a specific, professional, and sharp Hebrew suggestion for the form field: %q.\n\n", FieldLabel(field))
	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("1. Language: HEBREW ONLY.\n")
	sb.WriteString("2. Be specific to the context.\n")
	sb.WriteString("3. Style: Modern, appealing, and marketing-oriented.\n")
	sb.WriteString("4. Output: Return ONLY the suggested text value. No explanations.")
	return sb.String()
}

func describeAttachments(atts []domain.ReferenceAttachment) string {
	if len(atts) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(atts))
	for i, att := range atts {
		lines = append(lines, fmt.Sprintf("Attachment %d (%s): %s", i+1, att.FileName, att.UserInstruction))
	}
	return strings.Join(lines, "\n")
}
