package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/peraccount/internal/importer"
	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
)

const importTimeout = 2 * time.Minute

type Importer interface {
	Parse(r io.Reader) (*bankcsv.Result, error)
	Import(ctx context.Context, userID string, r io.Reader) (*importer.Outcome, error)
}

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateImporting
	importStateResult
)

type previewMsg struct {
	path   string
	result *bankcsv.Result
	err    error
}

type importResultMsg struct {
	outcome *importer.Outcome
	err     error
}

type importFields struct {
	confirm bool
}

type ImportModel struct {
	CommonModel
	importer Importer

	state      importState
	filePicker filepicker.Model
	form       *huh.Form
	fields     *importFields

	path    string
	preview *bankcsv.Result
	status  string
	err     error
}

func NewImportModel(userID string, imp Importer) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".tsv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel: CommonModel{UserID: userID},
		importer:    imp,
		filePicker:  fp,
		fields:      &importFields{},
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Esc: pick another file | Enter: confirm"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case previewMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err

			return m, nil
		}

		m.path = msg.path
		m.preview = msg.result
		m.fields.confirm = true
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Import %d transactions?", len(msg.result.Drafts))).
					Affirmative("Import").
					Negative("Cancel").
					Value(&m.fields.confirm),
			),
		).WithWidth(45).WithShowHelp(false)
		m.state = importStatePreview

		return m, m.form.Init()

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Imported %d transactions (%s, %s).",
				len(msg.outcome.Transactions), msg.outcome.Format, msg.outcome.Charset)

			if msg.outcome.Skipped > 0 {
				m.status += fmt.Sprintf(" Skipped %d rows without a date.", msg.outcome.Skipped)
			}
		}

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		return m.updateFilePick(msg)
	case importStatePreview:
		return m.updatePreview(msg)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview:
		m.state = importStateFilePick
		m.preview = nil
		m.form = nil

		return m, nil
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.fields.confirm {
		m.state = importStateFilePick
		m.preview = nil

		return m, nil
	}

	m.state = importStateImporting

	return m, m.importCmd(m.path)
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewMsg{err: err}
		}
		defer f.Close()

		result, err := m.importer.Parse(f)
		return previewMsg{path: path, result: result, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	uid := m.UserID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		outcome, err := m.importer.Import(ctx, uid, f)
		return importResultMsg{outcome: outcome, err: err}
	}
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return padded.Render("Select a bank statement (CSV):\n\n" + m.filePicker.View())
	case importStatePreview:
		return padded.Render(m.viewPreview())
	case importStateImporting:
		return padded.Render("Importing...")
	}

	if m.err != nil {
		return padded.Render(FormatError(m.err) + "\n\n(Esc to go back)")
	}

	return padded.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

const previewRows = 8

func (m ImportModel) viewPreview() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(m.path))
	fmt.Fprintf(&b, "Layout %s, encoding %s\n\n", m.preview.Format, m.preview.Charset)

	for i, d := range m.preview.Drafts {
		if i == previewRows {
			fmt.Fprintf(&b, "%s\n", faintStyle.Render(fmt.Sprintf("... %d more", len(m.preview.Drafts)-previewRows)))
			break
		}

		fmt.Fprintf(&b, "%s  %-10s %14s  %s\n", FormatDate(d.Date), d.Category, FormatSigned(d.Type, d.Amount), d.Memo)
	}

	if m.preview.Skipped > 0 {
		fmt.Fprintf(&b, "%s\n", faintStyle.Render(fmt.Sprintf("%d rows without a date will be skipped", m.preview.Skipped)))
	}

	b.WriteString("\n")
	b.WriteString(m.form.View())

	return b.String()
}
