package ai

import (
	"fmt"
	"strings"
)

const writerIntroTmpl = `You are a professional blog writer. Write a comprehensive, engaging blog post in %s about "%s".`

const titleHookTechniques = `The title must use one of these hook techniques:
   - Numeric framing (e.g. "3 things you need to know about...", "Fix it in 5 minutes...")
   - Benefit framing (e.g. "Cut your costs with...", "Double the results of...")
   - Differentiation framing (e.g. "What sets our approach apart...", "A different kind of...")
   - Problem-resolution framing (e.g. "Solving the ... problem", "... without the side effects")`

const figureWrapper = `<figure><img src="IMAGE_URL" alt="descriptive alt text"><figcaption>short caption</figcaption></figure>`

const formattingNotes = `Important:
- Keep the body around 1000 characters, neither too short nor too long
- Use proper HTML tags in the body (h2, h3, p, ul, ol, li, strong, em)
- Organize the post into 2-3 main sections that are informative and well structured
- Include practical examples and actionable insights
- Focus on quality over quantity`

// BuildPrompt renders the generation instruction for one post. The output is
// a pure function of in: equal inputs always produce equal prompts.
//
// When in.ImageURLs is non-empty the provider is told to embed those images
// in the body; otherwise it is asked for English image search keywords, and
// the requested JSON object gains an "image_keywords" field.
func BuildPrompt(in PromptInput) string {
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = "English"
	}
	embedImages := len(in.ImageURLs) > 0
	withBrand := in.Marketing != nil && strings.TrimSpace(in.Marketing.BusinessName) != ""

	var b strings.Builder
	fmt.Fprintf(&b, writerIntroTmpl, language, in.Topic)
	if in.Category != "" {
		fmt.Fprintf(&b, " The post belongs to the %q category.", in.Category)
	}
	b.WriteString("\n\n")

	if withBrand {
		writeMarketingInfo(&b, in.Marketing)
	}

	b.WriteString("Requirements:\n")
	step := 0
	next := func(format string, args ...any) {
		step++
		fmt.Fprintf(&b, "%d. "+format+"\n", append([]any{step}, args...)...)
	}
	next("Write an attention-grabbing, SEO-optimized title (max 60 characters).\n   %s", titleHookTechniques)
	next("Write a compelling excerpt (max 160 characters).")
	next("Write the body as HTML (approximately 800-1200 characters) with headings, paragraphs, lists and formatting.")
	next("Create 3-5 tags in %s for categorizing the post.", language)
	next("Write an SEO title (may differ from the main title, optimized for search).")
	next("Write an SEO description (max 160 characters).")
	next("Suggest 5-7 SEO keywords derived from: %s", strings.Join(in.Keywords, ", "))

	if embedImages {
		minEmbedded := min(len(in.ImageURLs), 2)
		next("Embed the following images inside the body. Wrap each one exactly like this:\n   %s\n   Write descriptive alt text for every image and embed at least %d of them:",
			figureWrapper, minEmbedded)
		for i, u := range in.ImageURLs {
			fmt.Fprintf(&b, "   Image %d: %s\n", i+1, u)
		}
	} else {
		next("Suggest 3-5 image search keywords in English for a stock photo search.")
	}

	if s := strings.TrimSpace(in.ContentInstructions); s != "" {
		b.WriteString("\nAdditional content instructions:\n")
		b.WriteString(s)
		b.WriteString("\n")
	}
	if s := strings.TrimSpace(in.SEOInstructions); s != "" {
		b.WriteString("\nAdditional SEO instructions:\n")
		b.WriteString(s)
		b.WriteString("\n")
	}

	b.WriteString("\nOutput format (JSON):\n")
	writeSchema(&b, !embedImages)

	b.WriteString("\n")
	b.WriteString(formattingNotes)
	fmt.Fprintf(&b, "\n- Write every field in %s", language)
	if !embedImages {
		b.WriteString(" except image_keywords, which must be English")
	}
	b.WriteString("\n\nRespond with a single JSON object as your final answer. You may wrap it in a ```json code fence; do not add any other JSON.")

	return b.String()
}

func writeMarketingInfo(b *strings.Builder, m *MarketingContext) {
	b.WriteString("## Marketing context\n")
	fmt.Fprintf(b, "- Business: %s", m.BusinessName)
	if m.Industry != "" {
		fmt.Fprintf(b, " (%s industry)", m.Industry)
	}
	b.WriteString("\n")
	if m.BusinessDescription != "" {
		fmt.Fprintf(b, "- Description: %s\n", m.BusinessDescription)
	}

	goal := m.PromotionGoal
	if goal == "" {
		goal = "build brand awareness and attract customers"
	}
	fmt.Fprintf(b, "- Marketing goal: %s\n", goal)

	style := m.ContentStyle
	if style == "" {
		style = "professional and trustworthy"
	}
	fmt.Fprintf(b, "- Content style: %s\n", style)

	if m.TargetAudience != "" {
		fmt.Fprintf(b, "- Target audience: %s\n", m.TargetAudience)
	}
	if m.BrandVoice != "" {
		fmt.Fprintf(b, "- Brand voice: %s\n", m.BrandVoice)
	}
	if len(m.UniqueSellingPoints) > 0 {
		fmt.Fprintf(b, "- Differentiators: %s\n", strings.Join(m.UniqueSellingPoints, ", "))
	}
	if len(m.CoreValues) > 0 {
		fmt.Fprintf(b, "- Core values: %s\n", strings.Join(m.CoreValues, ", "))
	}

	b.WriteString("\nBrand guidelines:\n")
	fmt.Fprintf(b, "- Mention %q naturally and helpfully in the body.\n", m.BusinessName)
	b.WriteString("- Keep editorial integrity and provide real value; the post must not read like an advertisement.\n")
	b.WriteString("- Work the business into the discussion where solutions or examples come up.\n\n")
}

func writeSchema(b *strings.Builder, withImageKeywords bool) {
	b.WriteString(`{
  "title": "Main title",
  "content": "<h2>Section 1</h2><p>Body...</p>",
  "excerpt": "Short summary",
  "tags": ["tag1", "tag2", "tag3"],
  "seo_title": "SEO optimized title",
  "seo_description": "SEO description",
  "seo_keywords": ["keyword1", "keyword2"]`)
	if withImageKeywords {
		b.WriteString(`,
  "image_keywords": ["keyword1", "keyword2", "keyword3"]`)
	}
	b.WriteString("\n}\n")
}
