// Package tui implements the interactive correction review: the annotation
// surface that feeds the human-correction override table.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calder-f/statement-resolver/internal/model"
	"github.com/calder-f/statement-resolver/internal/tokenizer"
)

// CorrectionSaver persists confirmed corrections.
type CorrectionSaver interface {
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	SaveLearnedValue(ctx context.Context, learned *model.LearnedValue) error
}

// Item is one security queued for review.
type Item struct {
	ISIN       string
	Name       string
	Value      float64
	Confidence float64
	Unresolved bool
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFFF"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
)

// ReviewModel steps through queued securities, letting the reviewer type a
// corrected market value for each. Empty input keeps the computed value.
type ReviewModel struct {
	saver   CorrectionSaver
	runID   string
	items   []Item
	index   int
	input   textinput.Model
	saved   int
	lastErr string
	done    bool
}

// NewReview creates the review model over the given items.
func NewReview(items []Item, saver CorrectionSaver, runID string) ReviewModel {
	input := textinput.New()
	input.Placeholder = "corrected market value (empty keeps current)"
	input.CharLimit = 24
	input.Width = 40
	input.Focus()

	return ReviewModel{
		saver: saver,
		runID: runID,
		items: items,
		input: input,
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.done = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m.confirm()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ReviewModel) confirm() (tea.Model, tea.Cmd) {
	raw := m.input.Value()
	if raw != "" {
		value, err := tokenizer.ParseAmount(raw, true)
		if err != nil {
			m.lastErr = fmt.Sprintf("cannot parse %q", raw)
			return m, nil
		}
		item := m.items[m.index]
		correction := &model.Correction{
			ISIN:           item.ISIN,
			Field:          model.CorrectionFieldMarketValue,
			CorrectedValue: value,
			Notes:          "entered during review",
		}
		if err := m.saver.SaveCorrection(context.Background(), correction); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		learned := &model.LearnedValue{
			ISIN:   item.ISIN,
			Value:  value,
			Source: m.runID,
		}
		if err := m.saver.SaveLearnedValue(context.Background(), learned); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.saved++
	}

	m.lastErr = ""
	m.input.Reset()
	m.index++
	if m.index >= len(m.items) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	if m.done || m.index >= len(m.items) {
		return fmt.Sprintf("Review complete: %d correction(s) saved.\n", m.saved)
	}

	item := m.items[m.index]
	status := fmt.Sprintf("%.0f%% confidence", item.Confidence*100)
	if item.Unresolved {
		status = "unresolved"
	}

	s := titleStyle.Render(fmt.Sprintf("Reviewing %d/%d", m.index+1, len(m.items))) + "\n\n"
	s += labelStyle.Render("ISIN    ") + valueStyle.Render(item.ISIN) + "\n"
	s += labelStyle.Render("Name    ") + item.Name + "\n"
	s += labelStyle.Render("Value   ") + fmt.Sprintf("%.2f (%s)", item.Value, status) + "\n\n"
	s += promptStyle.Render("› ") + m.input.View() + "\n"
	if m.lastErr != "" {
		s += errorStyle.Render(m.lastErr) + "\n"
	}
	s += labelStyle.Render("enter confirms · empty skips · esc quits") + "\n"
	return s
}

// Saved reports how many corrections the review persisted.
func (m ReviewModel) Saved() int {
	return m.saved
}
