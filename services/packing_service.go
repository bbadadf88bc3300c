package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/packwise/packwise-backend/errors"
	"github.com/packwise/packwise-backend/logger"
	"github.com/packwise/packwise-backend/types"
)

const llmProvider = "language model"

const packingSystemPrompt = `You are Packwise, a travel packing assistant.
Given a trip description and a conversation with the traveler, produce a practical packing list.
Respond with a single JSON object and nothing else, using this shape:
{"reply": "<short friendly message to the traveler>",
 "items": [{"name": "<item>", "category": "<category>", "quantity": <number>, "essential": <true|false>, "notes": "<optional note>"}]}
Use categories such as Clothing, Toiletries, Electronics, Documents, Health, Gear and Miscellaneous.
Keep item names short. Do not include more than 80 items.`

// PackingService turns a trip description and conversation into a packing list.
type PackingService struct {
	generator TextGenerator
	usage     UsageRecorder
	timeout   time.Duration
}

func NewPackingService(generator TextGenerator, usage UsageRecorder, timeout time.Duration) *PackingService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PackingService{
		generator: generator,
		usage:     usage,
		timeout:   timeout,
	}
}

type modelPackingReply struct {
	Reply string              `json:"reply"`
	Items []types.PackingItem `json:"items"`
}

func (s *PackingService) Generate(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, apperrors.ServiceUnavailable("Packing list generation is not configured")
	}

	log := logger.GetLogger()
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.generator.Generate(genCtx, packingSystemPrompt, buildPackingPrompt(req))
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
		}
		log.Errorw("Language model request failed", "error", err, "duration", time.Since(start))
		return nil, apperrors.Upstream(llmProvider, err)
	}

	parsed, err := parseModelReply(raw)
	if err != nil {
		log.Warnw("Unparseable language model response", "error", err, "length", len(raw))
		return nil, apperrors.Upstream(llmProvider, err)
	}

	items := types.NormalizeItems(parsed.Items)
	if len(items) > types.MaxListItems {
		items = items[:types.MaxListItems]
	}

	if s.usage != nil {
		s.usage.RecordVisit(ctx)
	}

	log.Infow("Generated packing list",
		"items", len(items),
		"model", s.generator.ModelName(),
		"duration", time.Since(start))

	return &types.ChatResponse{
		Reply: strings.TrimSpace(parsed.Reply),
		Items: items,
		Trip:  req.Trip,
		Model: s.generator.ModelName(),
	}, nil
}

func validateChatRequest(req types.ChatRequest) error {
	if len(req.Messages) > types.MaxChatMessages {
		return apperrors.ValidationFailed("Too many messages",
			fmt.Sprintf("a conversation may contain at most %d messages", types.MaxChatMessages))
	}

	hasUserMessage := false
	for i, msg := range req.Messages {
		switch msg.Role {
		case types.ChatRoleUser, types.ChatRoleAssistant:
		default:
			return apperrors.ValidationFailed("Invalid message role",
				fmt.Sprintf("message %d has unsupported role %q", i, msg.Role))
		}
		if utf8.RuneCountInString(msg.Content) > types.MaxChatMessageLength {
			return apperrors.ValidationFailed("Message too long",
				fmt.Sprintf("message %d exceeds %d characters", i, types.MaxChatMessageLength))
		}
		if msg.Role == types.ChatRoleUser && strings.TrimSpace(msg.Content) != "" {
			hasUserMessage = true
		}
	}

	hasDestination := req.Trip != nil && strings.TrimSpace(req.Trip.Destination) != ""
	if !hasUserMessage && !hasDestination {
		return apperrors.ValidationFailed("Missing trip details",
			"provide a user message or a trip destination")
	}
	return nil
}

func buildPackingPrompt(req types.ChatRequest) string {
	var b strings.Builder

	if trip := req.Trip; trip != nil {
		b.WriteString("Trip details:\n")
		writeField(&b, "Destination", trip.Destination)
		switch {
		case trip.StartDate != "" && trip.EndDate != "":
			writeField(&b, "Dates", trip.StartDate+" to "+trip.EndDate)
		case trip.StartDate != "":
			writeField(&b, "Departure", trip.StartDate)
		case trip.EndDate != "":
			writeField(&b, "Return", trip.EndDate)
		}
		if trip.DurationDays > 0 {
			writeField(&b, "Duration", fmt.Sprintf("%d days", trip.DurationDays))
		}
		if trip.Travelers > 0 {
			writeField(&b, "Travelers", fmt.Sprintf("%d", trip.Travelers))
		}
		writeField(&b, "Purpose", trip.Purpose)
		writeField(&b, "Activities", strings.Join(trip.Activities, ", "))
		writeField(&b, "Accommodation", trip.Accommodation)
		writeField(&b, "Climate", trip.Climate)
		writeField(&b, "Notes", trip.Notes)
		b.WriteString("\n")
	}

	if len(req.Messages) > 0 {
		b.WriteString("Conversation:\n")
		for _, msg := range req.Messages {
			content := strings.TrimSpace(msg.Content)
			if content == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, content)
		}
	}

	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "- %s: %s\n", name, value)
	}
}

// parseModelReply decodes the model output, tolerating markdown code fences
// and prose around the JSON object.
func parseModelReply(raw string) (*modelPackingReply, error) {
	text := stripCodeFences(raw)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var reply modelPackingReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("invalid model output: %w", err)
	}
	if reply.Items == nil && reply.Reply == "" {
		return nil, errors.New("model output has neither reply nor items")
	}
	return &reply, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
