package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jmigpin/imagewin"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type viewer struct {
	title  string
	wins   map[string]*imagewin.Window // file -> current window
	closed chan closedWin
	open   func(title string, img image.Image) (*imagewin.Window, error)
}

type closedWin struct {
	filename string
	win      *imagewin.Window
}

func newViewer(title string) *viewer {
	return &viewer{
		title:  title,
		wins:   map[string]*imagewin.Window{},
		closed: make(chan closedWin, 8),
		open:   imagewin.New,
	}
}

func (v *viewer) run(filenames []string, watch bool) error {
	for _, fn := range filenames {
		if err := v.show(fn); err != nil {
			return err
		}
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer w.Close()
		for fn := range v.wins {
			// watch the directory: editors often replace the file
			if err := w.Add(filepath.Dir(fn)); err != nil {
				return err
			}
		}
		events, errs = w.Events, w.Errors
	}

	v.loop(events, errs)
	return nil
}

// Returns when all windows are closed.
func (v *viewer) loop(events <-chan fsnotify.Event, errs <-chan error) {
	for len(v.wins) > 0 {
		select {
		case c := <-v.closed:
			// ignore windows that were already replaced
			if v.wins[c.filename] == c.win {
				delete(v.wins, c.filename)
			}
		case ev := <-events:
			v.onFileEvent(ev)
		case err := <-errs:
			log.Printf("watch: %v", err)
		}
	}
}

func (v *viewer) onFileEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	fn, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	old, ok := v.wins[fn]
	if !ok {
		return
	}
	if err := v.show(fn); err != nil {
		// file might still be partially written
		log.Printf("reload: %v", err)
		return
	}
	_ = old.Close()
}

func (v *viewer) show(filename string) error {
	fn, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	img, err := decodeFile(fn)
	if err != nil {
		return err
	}
	win, err := v.open(v.windowTitle(fn), img)
	if err != nil {
		return fmt.Errorf("%v: %w", filename, err)
	}
	v.wins[fn] = win
	go func() {
		<-win.Done()
		v.closed <- closedWin{fn, win}
	}()
	return nil
}

func (v *viewer) windowTitle(filename string) string {
	if v.title != "" {
		return v.title
	}
	return filepath.Base(filename)
}

//----------

func decodeFile(filename string) (image.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return img, nil
}
