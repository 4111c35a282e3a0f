package ui

import (
	"context"
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"LeapPaint/internal/export"
	"LeapPaint/internal/input"
	"LeapPaint/internal/state"
	"LeapPaint/internal/stroke"
)

// Options wires the window to an assembled stroke pipeline.
type Options struct {
	Processor      *stroke.Processor
	History        *state.History
	Palette        *Palette
	Size           *ThicknessControl
	Thickness      input.Normalizer
	Input          input.Config
	PixelsPerMeter float32
	Export         export.Options
	// Status is shown until the first action replaces it.
	Status string
}

// RunApp opens the painting window and blocks until it is closed.
func RunApp(ctx context.Context, opts Options) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	myApp := app.New()
	myWindow := myApp.NewWindow("LeapPaint")
	myWindow.Resize(fyne.NewSize(1024, 768))

	status := widget.NewLabel(opts.Status)
	if opts.Status == "" {
		status.SetText("Ready")
	}
	setStatus := func(text string) { status.SetText(text) }
	fail := func(what string, err error) {
		stroke.Logger().Error(what, "component", "ui", "error", err)
		setStatus(fmt.Sprintf("%s: %v", what, err))
	}

	board := NewBoard(opts.Processor, opts.History, opts.Input, opts.PixelsPerMeter)
	board.Adapter().Color = opts.Palette
	board.Adapter().Thickness = opts.Thickness
	board.OnError = func(err error) { fail("stroke", err) }

	opts.History.OnChange = func() {
		board.HistoryChanged()
		setStatus(fmt.Sprintf("%d strokes", opts.History.Len()))
	}

	toolbar := NewToolbar(Actions{
		Undo: func() {
			if _, ok := opts.History.Undo(); !ok {
				setStatus("Nothing to undo")
			}
		},
		Clear: func() {
			dialog.ShowConfirm("Clear scene", "Remove every stroke?", func(ok bool) {
				if ok {
					opts.History.Clear()
				}
			}, myWindow)
		},
		Save: func() {
			saveFile(myWindow, "scene.json", ".json", opts.History.Save, setStatus, fail)
		},
		Load: func() {
			d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil {
					fail("open scene", err)
					return
				}
				if r == nil {
					return
				}
				defer r.Close()
				if err := opts.History.Load(r); err != nil {
					fail("load scene", err)
					return
				}
				setStatus(fmt.Sprintf("Loaded %d strokes", opts.History.Len()))
			}, myWindow)
			d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			d.Show()
		},
		Export: func() {
			write := func(w io.Writer) error { return export.PDF(w, opts.History, opts.Export) }
			saveFile(myWindow, "scene.pdf", ".pdf", write, setStatus, fail)
		},
		ResetView: board.ResetView,
	}, opts.Palette, opts.Size)

	content := container.NewBorder(toolbar, status, nil, nil, board)
	myWindow.SetContent(content)

	go board.Run(ctx)
	myWindow.ShowAndRun()
}

func saveFile(win fyne.Window, name, ext string, write func(io.Writer) error, setStatus func(string), fail func(string, error)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			fail("save "+ext, err)
			return
		}
		if w == nil {
			return
		}
		defer func() {
			if err := w.Close(); err != nil {
				fail("close "+w.URI().Name(), err)
			}
		}()
		if err := write(w); err != nil {
			fail("write "+w.URI().Name(), err)
			return
		}
		setStatus("Saved " + w.URI().Name())
	}, win)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
