package confirm

import (
	"context"
	"fmt"

	"socguard/pkg/models"
)

// Scripted replays pre-loaded answers. It backs tests and programmatic
// callers that already hold a decision.
type Scripted struct {
	massAnswers []string
	yesNo       []bool

	// MassPrompts and IsolationPrompts record what was asked.
	MassPrompts      []models.MassException
	IsolationPrompts []string
}

// NewScripted creates a scripted prompter.
func NewScripted(massAnswers []string, yesNo []bool) *Scripted {
	return &Scripted{massAnswers: massAnswers, yesNo: yesNo}
}

// PromptMassIsolation pops the next scripted mass answer.
func (p *Scripted) PromptMassIsolation(ctx context.Context, exc models.MassException) (string, error) {
	p.MassPrompts = append(p.MassPrompts, exc)
	if len(p.massAnswers) == 0 {
		return "", fmt.Errorf("no scripted mass-isolation answer available")
	}
	answer := p.massAnswers[0]
	p.massAnswers = p.massAnswers[1:]
	return answer, nil
}

// ConfirmIsolation pops the next scripted yes/no answer.
func (p *Scripted) ConfirmIsolation(ctx context.Context, device string, threat models.Threat) (bool, error) {
	p.IsolationPrompts = append(p.IsolationPrompts, device)
	if len(p.yesNo) == 0 {
		return false, fmt.Errorf("no scripted isolation answer available")
	}
	answer := p.yesNo[0]
	p.yesNo = p.yesNo[1:]
	return answer, nil
}
