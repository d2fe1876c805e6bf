package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Navyasribhaskar/Casestudy/scorer"
)

const (
	logDebounceInterval = 150 * time.Millisecond
	maxLogLines         = 200
)

type tableColumn struct {
	Title  string
	Width  float32
	Render func(scorer.CriterionResult) string
}

type uiState struct {
	service *Service

	w             fyne.Window
	input         *widget.Entry
	log           *widget.Entry
	status        *widget.Label
	progress      *widget.ProgressBarInfinite
	summary       *widget.Label
	configSummary *widget.Label
	resTbl        *widget.Table
	columns       []tableColumn
	report        scorer.ScoreReport
	statusBind    binding.String
	summaryBind   binding.String
	logBind       binding.String
	logLines      []string
	logMu         sync.Mutex
	logUpdateCh   chan struct{}

	scoreBtn  *widget.Button
	exportBtn *widget.Button
	loadBtn   *widget.Button
	rubricBtn *widget.Button
}

func buildUI(a fyne.App, svc *Service, sink *logSink) *uiState {
	u := &uiState{service: svc}
	u.w = a.NewWindow("Transcript Scorer")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("Ready")
	u.summaryBind = binding.NewString()
	u.logBind = binding.NewString()
	u.startLogUpdater()
	sink.attach(u.appendLog)

	u.input = widget.NewMultiLineEntry()
	u.input.Wrapping = fyne.TextWrapWord
	u.input.SetPlaceHolder("Paste the transcript here")

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("Log")
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.summary = widget.NewLabelWithData(u.summaryBind)
	u.summary.TextStyle = fyne.TextStyle{Bold: true}
	u.progress = widget.NewProgressBarInfinite()
	u.progress.Stop()
	u.progress.Hide()
	u.configSummary = widget.NewLabel("")
	u.configSummary.Wrapping = fyne.TextWrapWord

	u.scoreBtn = widget.NewButtonWithIcon("Score", theme.ConfirmIcon(), func() { u.onScore() })
	u.exportBtn = widget.NewButtonWithIcon("Export CSV", theme.DocumentSaveIcon(), func() { u.onExport() })
	u.loadBtn = widget.NewButtonWithIcon("Load transcript", theme.FolderOpenIcon(), func() { u.onLoadFile() })
	u.rubricBtn = widget.NewButtonWithIcon("Choose rubric", theme.ListIcon(), func() { u.onChooseRubric() })
	settingsBtn := widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), func() { u.openSettings() })

	u.columns = makeColumns()
	u.resTbl = widget.NewTable(
		func() (int, int) {
			return len(u.report.PerCriterion) + 1, len(u.columns)
		},
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Wrapping = fyne.TextWrapWord
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Row == 0 {
				lbl.SetText(u.columns[id.Col].Title)
				lbl.Alignment = fyne.TextAlignCenter
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			lbl.Alignment = fyne.TextAlignLeading
			rowIdx := id.Row - 1
			if rowIdx >= len(u.report.PerCriterion) {
				lbl.SetText("")
				return
			}
			lbl.SetText(u.columns[id.Col].Render(u.report.PerCriterion[rowIdx]))
		},
	)
	u.applyColumnWidths()

	controls := container.NewGridWithColumns(3, u.scoreBtn, u.exportBtn, settingsBtn)
	fileControls := container.NewGridWithColumns(2, u.loadBtn, u.rubricBtn)
	left := container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Transcript", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		),
		container.NewVBox(
			controls,
			fileControls,
			widget.NewSeparator(),
			u.progress,
			u.status,
			widget.NewSeparator(),
			widget.NewLabelWithStyle("Configuration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			u.configSummary,
		),
		nil, nil,
		u.input,
	)
	logBox := container.NewBorder(
		widget.NewLabelWithStyle("Log", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil, u.log,
	)
	right := container.NewVSplit(
		container.NewBorder(u.summary, nil, nil, nil, u.resTbl),
		logBox,
	)
	right.Offset = 0.7
	split := container.NewHSplit(left, right)
	split.Offset = 0.35

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	u.updateConfigSummary()
	return u
}

func makeColumns() []tableColumn {
	return []tableColumn{
		{Title: "Criterion", Width: 200, Render: func(r scorer.CriterionResult) string { return r.Criterion }},
		{Title: "Score", Width: 80, Render: func(r scorer.CriterionResult) string { return fmt.Sprintf("%.2f", r.CriterionScore) }},
		{Title: "Weight", Width: 70, Render: func(r scorer.CriterionResult) string { return strconv.FormatFloat(r.Weight, 'g', -1, 64) }},
		{Title: "Semantic", Width: 90, Render: func(r scorer.CriterionResult) string { return fmt.Sprintf("%.4f", r.SemanticSimilarity) }},
		{Title: "Keywords", Width: 90, Render: func(r scorer.CriterionResult) string { return fmt.Sprintf("%.3f", r.KeywordFraction) }},
		{Title: "Length", Width: 80, Render: func(r scorer.CriterionResult) string { return fmt.Sprintf("%.3f", r.LengthFraction) }},
		{Title: "Found", Width: 220, Render: func(r scorer.CriterionResult) string { return strings.Join(r.FoundKeywords, ", ") }},
	}
}

func (u *uiState) applyColumnWidths() {
	for i, col := range u.columns {
		u.resTbl.SetColumnWidth(i, col.Width)
	}
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		buttons := []*widget.Button{u.scoreBtn, u.exportBtn, u.loadBtn, u.rubricBtn}
		for _, btn := range buttons {
			if b {
				btn.Disable()
			} else {
				btn.Enable()
			}
		}
		if b {
			u.progress.Show()
			u.progress.Start()
		} else {
			u.progress.Stop()
			u.progress.Hide()
		}
	})
}

func (u *uiState) appendLog(msg string) {
	now := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", now, msg)

	u.logMu.Lock()
	u.logLines = append(u.logLines, line)
	if len(u.logLines) > maxLogLines {
		u.logLines = u.logLines[len(u.logLines)-maxLogLines:]
	}
	u.logMu.Unlock()

	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

func (u *uiState) flushLog() {
	u.logMu.Lock()
	text := strings.Join(u.logLines, "\n")
	u.logMu.Unlock()
	_ = u.logBind.Set(text)
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) warmUp() {
	u.setStatus("Loading embedding model...")
	if u.service.Warm() {
		u.setStatus("Ready")
	} else {
		u.setStatus("Ready (semantic scoring off)")
	}
	fyne.Do(u.updateConfigSummary)
}

func (u *uiState) updateConfigSummary() {
	cfg := u.service.Config()
	semantic := "on"
	if err := u.service.EngineErr(); err != nil {
		semantic = "off"
	}
	path, n, err := u.service.RubricStats(context.Background())
	rubric := fmt.Sprintf("%s (%d criteria)", filepath.Base(path), n)
	if err != nil {
		rubric = fmt.Sprintf("%s (unavailable)", filepath.Base(path))
	}
	watch := "off"
	if cfg.WatchRubric {
		watch = "on"
	}
	u.configSummary.SetText(fmt.Sprintf("Rubric: %s / Watch: %s / Provider: %s / Semantic: %s / Workers: %d",
		rubric, watch, cfg.Embedder.Provider, semantic, cfg.Workers))
}

func (u *uiState) onScore() {
	text := strings.TrimSpace(u.input.Text)
	if text == "" {
		dialog.ShowInformation("Info", "The transcript is empty", u.w)
		return
	}
	u.setStatus("Scoring...")
	u.setBusy(true)
	start := time.Now()

	go func() {
		report, err := u.service.Score(context.Background(), text)
		u.setBusy(false)
		if err != nil {
			fyne.Do(func() {
				dialog.ShowError(err, u.w)
			})
			u.setStatus("Error")
			u.appendLog(fmt.Sprintf("scoring failed: %v", err))
			return
		}
		elapsed := time.Since(start).Seconds()
		fyne.Do(func() {
			u.report = report
			u.resTbl.Refresh()
			u.updateConfigSummary()
		})
		_ = u.summaryBind.Set(fmt.Sprintf("Overall: %.2f   Words: %d   Criteria: %d",
			report.OverallScore, report.WordCount, len(report.PerCriterion)))
		u.setStatus(fmt.Sprintf("Done (%.1fs)", elapsed))
		u.appendLog(fmt.Sprintf("scored %d criteria, overall %.2f (%.1fs)", len(report.PerCriterion), report.OverallScore, elapsed))
	}()
}

func (u *uiState) onExport() {
	if len(u.report.PerCriterion) == 0 {
		dialog.ShowInformation("Info", "Nothing to export yet", u.w)
		return
	}
	report := u.report
	fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if err := scorer.WriteReportCSV(uc, report); err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		u.appendLog(fmt.Sprintf("exported %d rows to %s", len(report.PerCriterion), uc.URI().Name()))
	}, u.w)
	fd.SetFileName("score.csv")
	fd.Show()
}

func (u *uiState) openSettings() {
	cfg := u.service.Config()

	workersEntry := widget.NewEntry()
	workersEntry.SetText(strconv.Itoa(cfg.Workers))
	watchCheck := widget.NewCheck("Reload rubric on change", nil)
	watchCheck.SetChecked(cfg.WatchRubric)
	providerSel := widget.NewSelect([]string{scorer.ProviderORT, scorer.ProviderOllama, scorer.ProviderOpenAI, scorer.ProviderNone}, nil)
	providerSel.SetSelected(cfg.Embedder.Provider)
	modelEntry := widget.NewEntry()
	modelEntry.SetText(cfg.Embedder.ModelPath)
	tokenizerEntry := widget.NewEntry()
	tokenizerEntry.SetText(cfg.Embedder.TokenizerPath)
	ollamaEntry := widget.NewEntry()
	ollamaEntry.SetText(cfg.Embedder.OllamaURL)

	form := &widget.Form{Items: []*widget.FormItem{
		{Text: "Workers", Widget: workersEntry},
		{Text: "Rubric watch", Widget: watchCheck},
		{Text: "Embedding provider", Widget: providerSel},
		{Text: "ONNX model", Widget: modelEntry},
		{Text: "Tokenizer", Widget: tokenizerEntry},
		{Text: "Ollama URL", Widget: ollamaEntry},
	}}

	dialog.NewCustomConfirm("Settings", "OK", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		newCfg := cfg.Clone()
		if v, err := strconv.Atoi(strings.TrimSpace(workersEntry.Text)); err == nil && v > 0 {
			newCfg.Workers = v
		}
		newCfg.WatchRubric = watchCheck.Checked
		if providerSel.Selected != "" {
			newCfg.Embedder.Provider = providerSel.Selected
		}
		newCfg.Embedder.ModelPath = strings.TrimSpace(modelEntry.Text)
		newCfg.Embedder.TokenizerPath = strings.TrimSpace(tokenizerEntry.Text)
		newCfg.Embedder.OllamaURL = strings.TrimSpace(ollamaEntry.Text)

		u.service.UpdateConfig(newCfg)
		u.updateConfigSummary()
		u.appendLog("settings updated")
		go u.warmUp()
	}, u.w).Show()
}

func (u *uiState) onLoadFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		text := transcriptText(data)
		u.input.SetText(text)
		u.appendLog(fmt.Sprintf("loaded %s (%d words)", rc.URI().Name(), len(strings.Fields(text))))
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".txt", ".md"}))
	fd.Show()
}

func (u *uiState) onChooseRubric() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		criteria, err := scorer.LoadCriteria(path)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		cfg := u.service.Config()
		cfg.RubricPath = path
		u.service.UpdateConfig(cfg)
		u.updateConfigSummary()
		u.appendLog(fmt.Sprintf("rubric set to %s (%d criteria)", filepath.Base(path), len(criteria)))
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx", ".xlsm", ".csv", ".tsv", ".yaml", ".yml", ".json"}))
	fd.Show()
}
