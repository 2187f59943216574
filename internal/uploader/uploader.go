package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const analyzePath = "/analyze-image"

// Messages shown to the user. Only these strings ever reach the view.
const (
	MsgNotImage     = "Please select an image file"
	MsgFileTooLarge = "File size must be less than 5MB"
	MsgNoFile       = "Please select an image first"
	MsgSubmitFailed = "Failed to process image. Please try again."
)

var (
	ErrNotImage           = errors.New("file is not an image")
	ErrFileTooLarge       = errors.New("file exceeds the 5MB limit")
	ErrNoFileSelected     = errors.New("no file selected")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrMalformedResponse  = errors.New("response has no content[0].text")
)

// State is the uploader's position in one submission cycle
type State int

const (
	Idle State = iota
	FileSelected
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file-selected"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// View is a snapshot of everything the uploader displays
type View struct {
	State    State
	FileName string
	Preview  string
	Error    string
	Response string
}

// StatusError is a non-2xx answer from the relay
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	body := string(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("relay returned status %d: %s", e.StatusCode, body)
}

type Config struct {
	RelayURL   string
	HTTPClient *http.Client
	Previewer  Previewer
	Logger     *zap.SugaredLogger
	Request    RequestOptions
}

// Uploader collects one image, validates it, and performs one round trip
// through the relay per submission.
type Uploader struct {
	relayURL  string
	client    *http.Client
	previewer Previewer
	logger    *zap.SugaredLogger
	opts      RequestOptions

	// inFlight is the single submission slot, taken by compare-and-swap
	inFlight atomic.Bool

	mu         sync.Mutex
	state      State
	file       *File
	preview    string
	errMsg     string
	response   string
	generation uint64
}

func New(cfg Config) *Uploader {
	u := &Uploader{
		relayURL:  strings.TrimRight(cfg.RelayURL, "/"),
		client:    cfg.HTTPClient,
		previewer: cfg.Previewer,
		logger:    cfg.Logger,
		opts:      cfg.Request.withDefaults(),
	}
	if u.client == nil {
		u.client = http.DefaultClient
	}
	if u.previewer == nil {
		u.previewer = TempFilePreviewer{}
	}
	if u.logger == nil {
		u.logger = zap.NewNop().Sugar()
	}
	return u
}

// View returns the current display state
func (u *Uploader) View() View {
	u.mu.Lock()
	defer u.mu.Unlock()

	v := View{
		State:    u.state,
		Preview:  u.preview,
		Error:    u.errMsg,
		Response: u.response,
	}
	if u.file != nil {
		v.FileName = u.file.Name
	}
	return v
}

// Select validates file and makes it the current selection. A rejected file
// only sets the inline error; the previous selection stays in place.
func (u *Uploader) Select(file File) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.errMsg = ""
	u.response = ""

	if !strings.HasPrefix(file.MediaType, "image/") {
		u.errMsg = MsgNotImage
		return ErrNotImage
	}
	if file.Size > MaxFileSize {
		u.errMsg = MsgFileTooLarge
		return ErrFileTooLarge
	}

	ref, err := u.previewer.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	u.releasePreviewLocked()

	u.file = &file
	u.preview = ref
	u.state = FileSelected
	u.generation++
	return nil
}

// Clear releases the preview and resets every displayed field. A submission
// still in flight finishes, but its result is discarded.
func (u *Uploader) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.releasePreviewLocked()
	u.file = nil
	u.errMsg = ""
	u.response = ""
	u.state = Idle
	u.generation++
}

func (u *Uploader) releasePreviewLocked() {
	if u.preview == "" {
		return
	}
	if err := u.previewer.Release(u.preview); err != nil {
		u.logger.Warnw("failed to release preview", "preview", u.preview, "error", err)
	}
	u.preview = ""
}

// Submit sends the selected file for analysis and returns the first text
// segment of the response. Without a selection it returns ErrNoFileSelected
// and issues no request.
func (u *Uploader) Submit(ctx context.Context) (string, error) {
	if !u.inFlight.CompareAndSwap(false, true) {
		return "", ErrSubmissionInFlight
	}
	defer u.inFlight.Store(false)

	u.mu.Lock()
	if u.file == nil {
		u.errMsg = MsgNoFile
		u.mu.Unlock()
		return "", ErrNoFileSelected
	}
	file := *u.file
	gen := u.generation
	u.state = Submitting
	u.errMsg = ""
	u.response = ""
	u.mu.Unlock()

	text, err := u.analyze(ctx, file)

	u.mu.Lock()
	defer u.mu.Unlock()

	if err != nil {
		u.logger.Errorw("API Error", "file", file.Name, "error", err)
	}
	if gen != u.generation {
		// Selection changed or was cleared while the request ran
		return text, err
	}
	if err != nil {
		u.state = Failed
		u.errMsg = MsgSubmitFailed
		return "", err
	}
	u.state = Succeeded
	u.response = text
	return text, nil
}

func (u *Uploader) analyze(ctx context.Context, file File) (string, error) {
	payload, err := json.Marshal(BuildRequest(file, u.opts))
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.relayURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return ExtractText(body)
}

// ExtractText returns content[0].text from an upstream messages response
func ExtractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}
	text := gjson.GetBytes(body, "content.0.text")
	if !text.Exists() || text.Type != gjson.String {
		return "", ErrMalformedResponse
	}
	return text.String(), nil
}
