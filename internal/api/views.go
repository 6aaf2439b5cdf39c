package api

import (
	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/ashureev/ajiwai-labs/internal/manual"
	"github.com/ashureev/ajiwai-labs/internal/simulator"
)

type chatView struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
	Reply     string           `json:"reply,omitempty"`
}

type checklistItem struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Done     bool            `json:"done"`
}

type simulatorView struct {
	SessionID    string           `json:"session_id"`
	Issue        string           `json:"issue"`
	Messages     []domain.Message `json:"messages"`
	Checklist    []checklistItem  `json:"checklist"`
	Turns        int              `json:"turns"`
	State        domain.State     `json:"state"`
	Resolved     bool             `json:"resolved"`
	Reply        string           `json:"reply,omitempty"`
	JustResolved bool             `json:"just_resolved,omitempty"`
	Success      string           `json:"success,omitempty"`
}

type manualView struct {
	Answer  string         `json:"answer"`
	Context string         `json:"context"`
	Chunks  []manual.Chunk `json:"chunks"`
}

func newChatView(s *domain.Session, reply string) chatView {
	return chatView{SessionID: s.ID, Messages: s.Transcript(), Reply: reply}
}

func newSimulatorView(s *domain.Session) simulatorView {
	items := make([]checklistItem, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		items = append(items, checklistItem{Category: c, Label: c.Label(), Done: s.Checklist[c]})
	}

	v := simulatorView{
		SessionID: s.ID,
		Messages:  s.Transcript(),
		Checklist: items,
		Turns:     s.Turns,
		State:     s.State,
		Resolved:  s.Checklist.Complete(),
	}
	if s.Scenario != nil {
		v.Issue = s.Scenario.Issue
	}
	return v
}

func newTurnView(res *simulator.TurnResult) simulatorView {
	v := newSimulatorView(res.Session)
	v.Reply = res.Reply
	if res.JustResolved {
		v.JustResolved = true
		v.Success = simulator.SuccessMessage
	}
	return v
}

func newManualView(res *manual.Result) manualView {
	return manualView{Answer: res.Answer, Context: res.Context, Chunks: res.Chunks}
}
