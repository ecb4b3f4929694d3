package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"yashubustudio/texteval/evaluator"
	"yashubustudio/texteval/internal/logger"
)

func main() {
	fyneApp := app.NewWithID("yashubustudio.texteval")
	win := fyneApp.NewWindow("TextEval (生成テキスト評価)")
	win.Resize(fyne.NewSize(1100, 780))

	cfg, err := evaluator.LoadConfig("")
	if err != nil {
		showFatalError(win, fmt.Errorf("設定の読み込みに失敗しました: %w", err))
		return
	}

	loggerBinding := binding.NewString()
	logCapture := newLogCapture(loggerBinding, 300)
	out := zerolog.ConsoleWriter{Out: io.MultiWriter(os.Stdout, logCapture), NoColor: true, TimeFormat: time.TimeOnly}
	log := logger.New(out, cfg.Log.Level)

	engine := evaluator.NewEngine(cfg, evaluator.WithLogger(log))
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("close engine", "error", err)
		}
	}()

	ctx := context.Background()
	cfgMu := sync.Mutex{}
	saveConfig := func() {
		cfgMu.Lock()
		defer cfgMu.Unlock()
		if err := evaluator.SaveConfig("", cfg); err != nil {
			log.Warn("設定の保存に失敗しました", "error", err)
		}
	}
	defer saveConfig()

	// Text inputs
	originalInput := widget.NewMultiLineEntry()
	originalInput.SetPlaceHolder("原文（英語）")
	originalInput.Wrapping = fyne.TextWrapWord

	candidateInput := widget.NewMultiLineEntry()
	candidateInput.SetPlaceHolder("評価したい生成文（要約・言い換えなど）")
	candidateInput.Wrapping = fyne.TextWrapWord

	translationOutput := widget.NewMultiLineEntry()
	translationOutput.SetPlaceHolder("翻訳結果")
	translationOutput.Wrapping = fyne.TextWrapWord

	statusLabel := widget.NewLabel("準備完了")

	var (
		tableMu   sync.Mutex
		tableData [][]string
	)
	resultTable := widget.NewTable(
		func() (int, int) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if len(tableData) == 0 {
				return 0, 0
			}
			return len(tableData), len(tableData[0])
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if len(tableData) == 0 || id.Row >= len(tableData) || id.Col >= len(tableData[id.Row]) {
				return
			}
			label := obj.(*widget.Label)
			label.SetText(tableData[id.Row][id.Col])
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				label.TextStyle = fyne.TextStyle{}
			}
		},
	)
	resultTable.OnSelected = func(id widget.TableCellID) {
		tableMu.Lock()
		defer tableMu.Unlock()
		if id.Row <= 0 || id.Row >= len(tableData) {
			return
		}
		dialog.ShowInformation("詳細", strings.Join(tableData[id.Row], "\n"), win)
	}

	// updateTable must run on the main goroutine.
	updateTable := func(data [][]string) {
		tableMu.Lock()
		tableData = data
		tableMu.Unlock()
		if len(data) > 0 {
			for col := range data[0] {
				width := float32(130)
				if col == 0 {
					width = 220
				}
				resultTable.SetColumnWidth(col, width)
			}
		}
		resultTable.Refresh()
	}

	// busy runs fn off the UI goroutine with every action button disabled.
	var buttons []*widget.Button
	busy := func(status string, fn func() (string, error)) {
		for _, b := range buttons {
			b.Disable()
		}
		statusLabel.SetText(status)
		go func() {
			start := time.Now()
			msg, err := fn()
			elapsed := time.Since(start)
			fyne.Do(func() {
				for _, b := range buttons {
					b.Enable()
				}
				if err != nil {
					statusLabel.SetText("エラーが発生しました")
					showError(win, err)
					return
				}
				statusLabel.SetText(fmt.Sprintf("%s %.2fs", msg, elapsed.Seconds()))
			})
		}()
	}

	evaluateBtn := widget.NewButton("評価", func() {
		original, candidate := originalInput.Text, candidateInput.Text
		if strings.TrimSpace(original) == "" && strings.TrimSpace(candidate) == "" {
			showError(win, fmt.Errorf("入力文章がありません"))
			return
		}
		busy("評価中...", func() (string, error) {
			report := engine.Report(ctx, original, candidate)
			data := buildReportTable(report)
			fyne.Do(func() { updateTable(data) })
			return fmt.Sprintf("評価完了 (%s)", report.Rating), nil
		})
	})

	compareBtn := widget.NewButton("参照データと比較", func() {
		original, candidate := originalInput.Text, candidateInput.Text
		busy("比較中...", func() (string, error) {
			c := engine.Compare(ctx, original, candidate, "")
			data := buildComparisonTable(c)
			fyne.Do(func() { updateTable(data) })
			if c.Reference == nil {
				return "参照データに該当なし", nil
			}
			return "比較完了", nil
		})
	})

	languageSelect := widget.NewSelect(evaluator.SupportedLanguages(), nil)
	languageSelect.SetSelectedIndex(0)
	translateBtn := widget.NewButton("翻訳", func() {
		candidate, language := candidateInput.Text, languageSelect.Selected
		busy("翻訳中...", func() (string, error) {
			out, err := engine.Translate(ctx, candidate, language)
			if err != nil {
				return "", err
			}
			fyne.Do(func() { translationOutput.SetText(out) })
			return language + "へ翻訳しました", nil
		})
	})

	paraphraseCheck := widget.NewCheck("言い換え", nil)
	generateBtn := widget.NewButton("要約を生成", func() {
		original := originalInput.Text
		p := evaluator.Params{Task: evaluator.TaskSummarize}
		if paraphraseCheck.Checked {
			p.Task = evaluator.TaskParaphrase
		}
		busy("生成中...", func() (string, error) {
			out, err := engine.Generate(ctx, "", original, p)
			if err != nil {
				return "", err
			}
			fyne.Do(func() { candidateInput.SetText(out) })
			return "生成完了", nil
		})
	})

	batchBtn := widget.NewButton("CSV一括評価", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			rc.Close()
			busy("一括評価中...", func() (string, error) {
				pairs, err := evaluator.ParsePairs(path)
				if err != nil {
					return "", err
				}
				results := engine.EvaluateAll(ctx, pairs)
				data := buildBatchTable(results)
				fyne.Do(func() { updateTable(data) })
				return fmt.Sprintf("%d件", len(results)), nil
			})
		}, win)
		fd.SetFilter(storageFilter([]string{".csv", ".tsv"}))
		fd.Show()
	})

	exportBtn := widget.NewButton("結果をCSV出力", func() {
		tableMu.Lock()
		rows := tableData
		tableMu.Unlock()
		if len(rows) <= 1 {
			showError(win, fmt.Errorf("出力する結果がありません"))
			return
		}
		fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if uc == nil {
				return
			}
			defer uc.Close()
			writer := csv.NewWriter(uc)
			if err := writer.WriteAll(rows); err != nil {
				showError(win, err)
			}
		}, win)
		fd.SetFileName("results.csv")
		fd.SetFilter(storageFilter([]string{".csv"}))
		fd.Show()
	})

	buttons = []*widget.Button{evaluateBtn, compareBtn, translateBtn, generateBtn, batchBtn}

	// Settings
	referenceLabel := widget.NewLabel("参照データ: " + cfg.ReferencePath)
	referenceBtn := widget.NewButton("参照データ選択", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if rc == nil {
				return
			}
			defer rc.Close()
			path := rc.URI().Path()
			cfgMu.Lock()
			cfg.ReferencePath = path
			localCfg := cfg
			cfgMu.Unlock()
			engine.UpdateConfig(localCfg)
			saveConfig()
			referenceLabel.SetText("参照データ: " + path)
		}, win)
		fd.SetFilter(storageFilter([]string{".csv", ".tsv"}))
		fd.Show()
	})

	maxOrderSlider := widget.NewSlider(1, 4)
	maxOrderSlider.Step = 1
	maxOrderSlider.SetValue(float64(cfg.Lexical.MaxOrder))
	maxOrderLabel := widget.NewLabel(fmt.Sprintf("BLEU n-gram: %d", cfg.Lexical.MaxOrder))
	maxOrderSlider.OnChanged = func(v float64) {
		n := int(v)
		maxOrderLabel.SetText(fmt.Sprintf("BLEU n-gram: %d", n))
		cfgMu.Lock()
		cfg.Lexical.MaxOrder = n
		localCfg := cfg
		cfgMu.Unlock()
		engine.UpdateConfig(localCfg)
		saveConfig()
	}

	logLabel := widget.NewLabelWithData(loggerBinding)
	logLabel.Wrapping = fyne.TextWrapWord
	logContainer := container.NewVScroll(logLabel)
	logContainer.SetMinSize(fyne.NewSize(200, 120))

	controls := container.NewVBox(
		container.NewHBox(evaluateBtn, compareBtn, batchBtn, exportBtn, statusLabel),
		container.NewVBox(widget.NewLabel("原文"), originalInput),
		container.NewVBox(widget.NewLabel("生成文"), candidateInput),
		container.NewHBox(generateBtn, paraphraseCheck),
		widget.NewSeparator(),
		container.NewVBox(
			widget.NewLabel("翻訳"),
			container.NewHBox(languageSelect, translateBtn),
			translationOutput,
		),
		widget.NewSeparator(),
		container.NewVBox(
			widget.NewLabel("設定"),
			container.NewHBox(referenceBtn, referenceLabel),
			container.NewHBox(maxOrderLabel, maxOrderSlider),
		),
		widget.NewSeparator(),
		widget.NewLabel("ログ"),
		logContainer,
	)

	root := container.NewHSplit(container.NewVScroll(controls), container.NewVSplit(resultTable, widget.NewLabel("セルを選択すると詳細が表示されます")))
	root.Offset = 0.45
	win.SetContent(root)

	win.ShowAndRun()
}

func showFatalError(win fyne.Window, err error) {
	content := widget.NewLabel(err.Error())
	win.SetContent(content)
	dialog.ShowError(err, win)
	win.ShowAndRun()
}

func showError(win fyne.Window, err error) {
	if err != nil {
		dialog.ShowError(err, win)
	}
}

func storageFilter(exts []string) storage.FileFilter {
	return storage.NewExtensionFileFilter(exts)
}

func buildReportTable(r evaluator.Report) [][]string {
	data := [][]string{
		{"指標", "原文", "生成文"},
		{"lexical overlap (BLEU)", "", formatFloat(r.Bundle.LexicalOverlap)},
		{"fluency (perplexity)", "", formatFloat(r.Bundle.Fluency)},
		{"Flesch-Kincaid grade", formatFloat(r.ReadabilityOriginal.FleschKincaidGrade), formatFloat(r.ReadabilityCandidate.FleschKincaidGrade)},
		{"readability delta", "", formatFloat(r.Bundle.ReadabilityDelta)},
		{"Flesch reading ease", formatFloat(r.ReadabilityOriginal.FleschReadingEase), formatFloat(r.ReadabilityCandidate.FleschReadingEase)},
		{"Gunning fog", formatFloat(r.ReadabilityOriginal.GunningFog), formatFloat(r.ReadabilityCandidate.GunningFog)},
		{"SMOG", formatFloat(r.ReadabilityOriginal.SMOGIndex), formatFloat(r.ReadabilityCandidate.SMOGIndex)},
		{"ARI", formatFloat(r.ReadabilityOriginal.AutomatedReadabilityIndex), formatFloat(r.ReadabilityCandidate.AutomatedReadabilityIndex)},
		{"Coleman-Liau", formatFloat(r.ReadabilityOriginal.ColemanLiauIndex), formatFloat(r.ReadabilityCandidate.ColemanLiauIndex)},
		{"ROUGE-1 F1", "", formatFloat(r.Rouge1.F1)},
		{"ROUGE-2 F1", "", formatFloat(r.Rouge2.F1)},
		{"ROUGE-L F1", "", formatFloat(r.RougeL.F1)},
		{"rating", "", r.Rating},
		{"words", fmt.Sprint(r.StatsOriginal.Words), fmt.Sprint(r.StatsCandidate.Words)},
		{"sentences", fmt.Sprint(r.StatsOriginal.Sentences), fmt.Sprint(r.StatsCandidate.Sentences)},
		{"characters", fmt.Sprint(r.StatsOriginal.Characters), fmt.Sprint(r.StatsCandidate.Characters)},
		{"reading minutes", fmt.Sprint(r.StatsOriginal.ReadingMinutes), fmt.Sprint(r.StatsCandidate.ReadingMinutes)},
		{"compression %", "", formatFloat(r.CompressionRatio)},
		{"word edit rate", "", formatFloat(r.WordEditRate)},
		{"char edit rate", "", formatFloat(r.CharEditRate)},
	}
	for _, d := range r.Diagnostics {
		data = append(data, []string{d.Metric + " unavailable", "", d.Err.Error()})
	}
	return data
}

func buildComparisonTable(c evaluator.Comparison) [][]string {
	header := []string{"指標", "生成文"}
	if c.ReferenceBundle != nil {
		header = append(header, "参照")
	}
	data := [][]string{header}
	add := func(name string, pick func(evaluator.MetricBundle) float64) {
		row := []string{name, formatFloat(pick(c.Generated))}
		if c.ReferenceBundle != nil {
			row = append(row, formatFloat(pick(*c.ReferenceBundle)))
		}
		data = append(data, row)
	}
	add("lexical overlap", func(b evaluator.MetricBundle) float64 { return b.LexicalOverlap })
	add("fluency", func(b evaluator.MetricBundle) float64 { return b.Fluency })
	add("readability (original)", func(b evaluator.MetricBundle) float64 { return b.ReadabilityOriginal })
	add("readability (candidate)", func(b evaluator.MetricBundle) float64 { return b.ReadabilityCandidate })
	add("readability delta", func(b evaluator.MetricBundle) float64 { return b.ReadabilityDelta })
	if c.Reference != nil {
		data = append(data, []string{"reference text", "", truncateText(c.Reference.Transformed, 100)})
	}
	return data
}

func buildBatchTable(results []evaluator.PairResult) [][]string {
	data := make([][]string, 1, len(results)+1)
	data[0] = []string{"text", "lexical", "fluency", "readability (orig)", "readability (cand)", "delta", "errors"}
	for _, r := range results {
		label := r.Pair.Index
		if label == "" {
			label = truncateText(r.Pair.Original, 100)
		}
		errs := make([]string, 0, len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			errs = append(errs, d.Metric)
		}
		b := r.Bundle
		data = append(data, []string{
			label,
			formatFloat(b.LexicalOverlap),
			formatFloat(b.Fluency),
			formatFloat(b.ReadabilityOriginal),
			formatFloat(b.ReadabilityCandidate),
			formatFloat(b.ReadabilityDelta),
			strings.Join(errs, ","),
		})
	}
	return data
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncateText(text string, max int) string {
	if len([]rune(text)) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "…"
}

type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	_ = l.binding.Set(strings.Join(l.lines, "\n"))
	return len(p), nil
}
