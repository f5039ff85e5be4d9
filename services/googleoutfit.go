package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"combineapi/models"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model used for outfit reasoning.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

type outfitLLMResponse struct {
	ItemIDs   []int64 `json:"item_ids"`
	Reasoning string  `json:"reasoning"`
}

// GeminiOutfitGenerator asks Gemini to compose the outfit. The model sees the
// whole wardrobe plus the rejected combinations with their item details, so
// it can avoid not only the exact excluded sets but also the styles the user
// disliked. The model output is never trusted: each candidate is re-checked
// against the wardrobe and the exclusion set, and bad candidates cost one of
// MaxAttempts retries.
type GeminiOutfitGenerator struct {
	Model       LLMModelName
	MaxAttempts int
}

func NewGeminiOutfitGenerator() *GeminiOutfitGenerator {
	return &GeminiOutfitGenerator{Model: Flash25, MaxAttempts: 3}
}

func (g *GeminiOutfitGenerator) Propose(ctx context.Context, items []models.ClothingItem, exclusions *ExclusionSet) ([]uint, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	owned := map[uint]bool{}
	for _, item := range items {
		owned[item.ID] = true
	}
	prompt := buildOutfitPrompt(items, exclusions)

	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := client.Models.GenerateContent(ctx, g.Model.String(), []*genai.Content{
			{Parts: []*genai.Part{{Text: prompt}}},
		}, &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			CandidateCount:   1,
			MaxOutputTokens:  2000,
			Temperature:      floatPointer(1),
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{
					{Text: "You are a fashion stylist. You pick outfits only from the provided wardrobe and you never repeat a rejected combination. Respond with JSON only."},
				},
			},
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, context.DeadlineExceeded
			}
			return nil, fmt.Errorf("gemini generate content: %w", err)
		}

		candidate, parseErr := parseOutfitResponse(result.Text())
		if parseErr != nil {
			fmt.Printf("[Gemini] Attempt %d: unparseable response: %v\n", attempt+1, parseErr)
			continue
		}
		if len(candidate) == 0 {
			// the model itself concluded nothing new can be composed
			return nil, nil
		}
		if !allOwned(candidate, owned) {
			fmt.Printf("[Gemini] Attempt %d: response contains foreign item IDs %v\n", attempt+1, candidate)
			continue
		}
		if exclusions.Contains(candidate) {
			fmt.Printf("[Gemini] Attempt %d: response repeats an excluded combination %v\n", attempt+1, candidate)
			continue
		}
		return candidate, nil
	}
	return nil, nil
}

func parseOutfitResponse(text string) ([]uint, error) {
	var parsed outfitLLMResponse
	if err := json.Unmarshal([]byte(cleanAIResponseText(text)), &parsed); err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(parsed.ItemIDs))
	for _, id := range parsed.ItemIDs {
		if id <= 0 {
			return nil, fmt.Errorf("non-positive item id %d in response", id)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func allOwned(ids []uint, owned map[uint]bool) bool {
	for _, id := range ids {
		if !owned[id] {
			return false
		}
	}
	return true
}

func buildOutfitPrompt(items []models.ClothingItem, exclusions *ExclusionSet) string {
	var b strings.Builder
	b.WriteString("Compose one outfit from this wardrobe. Rules: exactly one top, one bottom and one pair of shoes; outerwear and accessories are optional; prefer items with compatible seasons and colors.\n\nWardrobe:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "- id=%d name=%q category=%s color=%s season=%s", item.ID, item.Name, item.Category, item.Color, item.Season)
		if item.Material != nil {
			fmt.Fprintf(&b, " material=%s", *item.Material)
		}
		if item.Brand != nil {
			fmt.Fprintf(&b, " brand=%s", *item.Brand)
		}
		b.WriteString("\n")
	}

	if len(exclusions.Outfits) > 0 {
		b.WriteString("\nThese combinations were already suggested or disliked. Never return any of these exact item-id sets, and avoid the color/style patterns of the disliked ones:\n")
		for _, excluded := range exclusions.Outfits {
			fmt.Fprintf(&b, "- status=%s items=[", excluded.Status)
			for i, item := range excluded.Items {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "id=%d %s %s %s", item.ID, item.Category, item.Color, item.Season)
			}
			b.WriteString("]\n")
		}
	}

	b.WriteString("\nRespond with JSON only: {\"item_ids\": [..], \"reasoning\": \"..\"}. If no new valid combination exists, respond {\"item_ids\": [], \"reasoning\": \"..\"}.")
	return b.String()
}
