package page

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/ancients-collective/allurexl/internal/config"
)

var errNoElement = errors.New("no such element")

// fakeDriver is an in-memory Driver. Elements exist when listed in visible;
// navigation sets the current URL, optionally through redirects.
type fakeDriver struct {
	mu sync.Mutex

	visible  map[string]bool
	texts    map[string]string
	counts   map[string]int
	redirect map[string]string
	onClick  map[string]string // selector -> URL after the click
	navErr   map[string]error

	url    string
	urlSeq []string

	navigated []string
	clicks    []string
	fills     map[string]string
	waits     []string
	shots     []string
	shotErr   error
	cleared   bool
}

func newFakeDriver(visible ...string) *fakeDriver {
	d := &fakeDriver{
		visible:  map[string]bool{},
		texts:    map[string]string{},
		counts:   map[string]int{},
		redirect: map[string]string{},
		onClick:  map[string]string{},
		navErr:   map[string]error{},
		fills:    map[string]string{},
	}
	for _, v := range visible {
		d.visible[v] = true
	}
	return d
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navigated = append(d.navigated, url)
	if err := d.navErr[url]; err != nil {
		return err
	}
	if to, ok := d.redirect[url]; ok {
		url = to
	}
	d.url = url
	d.urlSeq = nil
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible[selector] {
		return errNoElement
	}
	d.clicks = append(d.clicks, selector)
	if to, ok := d.onClick[selector]; ok {
		d.url = to
	}
	return nil
}

func (d *fakeDriver) Fill(_ context.Context, selector, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible[selector] {
		return errNoElement
	}
	d.fills[selector] = value
	return nil
}

func (d *fakeDriver) WaitFor(_ context.Context, selector string, state WaitState, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waits = append(d.waits, string(state)+" "+selector)
	present := d.visible[selector]
	if state == StateHidden {
		present = !present
	}
	if !present {
		return errNoElement
	}
	return nil
}

func (d *fakeDriver) IsVisible(_ context.Context, selector string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible[selector], nil
}

func (d *fakeDriver) Text(_ context.Context, selector string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.texts[selector]
	if !ok {
		return "", errNoElement
	}
	return t, nil
}

func (d *fakeDriver) Count(_ context.Context, selector string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.counts[selector]
	if !ok {
		return 0, errNoElement
	}
	return n, nil
}

// URL returns the queued URLs one by one, then the current URL.
func (d *fakeDriver) URL(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.urlSeq) > 0 {
		u := d.urlSeq[0]
		d.urlSeq = d.urlSeq[1:]
		return u, nil
	}
	return d.url, nil
}

func (d *fakeDriver) Screenshot(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shotErr != nil {
		return d.shotErr
	}
	d.shots = append(d.shots, path)
	return os.WriteFile(path, []byte("\x89PNG"), 0o644)
}

func (d *fakeDriver) ClearSession(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared = true
	return nil
}

const testBaseURL = "https://portal.example.com"

// newTestBase returns a Base with short timeouts over drv.
func newTestBase(drv Driver) *Base {
	b := NewBase(drv, config.SuiteConfig{
		BaseURL:           testBaseURL + "/",
		NavigationTimeout: 40 * time.Millisecond,
		ElementTimeout:    10 * time.Millisecond,
	}, nil)
	b.poll = time.Millisecond
	return b
}
