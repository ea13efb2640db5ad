package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/seatmap-editor/internal/editor"
	"github.com/iliyamo/seatmap-editor/internal/middleware"
	"github.com/iliyamo/seatmap-editor/internal/model"
	"github.com/iliyamo/seatmap-editor/internal/queue"
	"github.com/iliyamo/seatmap-editor/internal/report"
	"github.com/iliyamo/seatmap-editor/internal/repository"
	"github.com/iliyamo/seatmap-editor/internal/store"
)

const (
	mimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultDocName  = "seatmap.json"
	publishTimeout  = 5 * time.Second
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 20 << 20
)

var (
	errNoDocument  = errors.New("missing seat map document")
	errTooLarge    = errors.New("seat map exceeds the upload limit")
	errNoRequest   = errors.New("missing edit request")
	errBadRequest  = errors.New("invalid request body")
	errAuditAbsent = errors.New("edit audit log is not configured")
)

// AuditLog records applied edits.  *repository.EditRepo implements it.
type AuditLog interface {
	Record(ctx context.Context, e *repository.Edit) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]repository.Edit, error)
}

// EventPublisher announces applied edits on the message broker.
type EventPublisher interface {
	PublishSeatMapEdited(ctx context.Context, ev queue.SeatMapEditedEvent) error
}

// CacheInvalidator drops cached responses of a session after it changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

// SeatMapHandler serves the seat map editing API.  Store and Engine are
// required; Audit, Events and Cache are optional and skipped when nil.
type SeatMapHandler struct {
	Store          store.DocumentStore
	Engine         *editor.Engine
	Audit          AuditLog
	Events         EventPublisher
	Cache          CacheInvalidator
	MaxUploadBytes int64
	Timeout        time.Duration
	Log            *zap.Logger
}

// NewSeatMapHandler panics on a nil store, like the other constructors in
// this package.
func NewSeatMapHandler(st store.DocumentStore, log *zap.Logger) *SeatMapHandler {
	if st == nil {
		panic("nil store passed to NewSeatMapHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SeatMapHandler{
		Store:          st,
		Engine:         editor.NewEngine(log),
		MaxUploadBytes: defaultMaxBytes,
		Timeout:        defaultTimeout,
		Log:            log,
	}
}

type sectionInfo struct {
	Name      string `json:"name"`
	Seats     int    `json:"seats"`
	Available int    `json:"available"`
}

type docInfo struct {
	ID         string             `json:"id,omitempty"`
	Name       string             `json:"name"`
	Edits      int                `json:"edits"`
	Sections   []sectionInfo      `json:"sections"`
	Seats      int                `json:"seats"`
	Unindexed  int                `json:"unindexed"`
	Collisions []editor.Collision `json:"collisions"`
}

type chunkView struct {
	Text    string   `json:"text"`
	Section string   `json:"section,omitempty"`
	Seats   []string `json:"seats"`
}

// Upload handles POST /v1/seatmaps.  The document is the raw request body or
// the multipart field "file"; ?name= overrides the stored file name.
func (h *SeatMapHandler) Upload(c echo.Context) error {
	name, data, err := h.readUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	doc, err := model.LoadDocument(data)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	sess, err := h.Store.Create(ctx, name, middleware.Actor(c), data)
	if err != nil {
		return h.fail(c, err)
	}
	info := h.describe(doc)
	info.ID, info.Name = sess.ID, sess.Name
	h.Log.Info("seat map uploaded",
		zap.String("session", sess.ID),
		zap.String("actor", sess.Owner),
		zap.Int("bytes", len(data)),
		zap.Int("seats", info.Seats))
	return c.JSON(http.StatusCreated, info)
}

// Download handles GET /v1/seatmaps/:id and returns the current document as
// an indented JSON attachment.
func (h *SeatMapHandler) Download(c echo.Context) error {
	sess, doc, err := h.load(c)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := doc.Encode()
	if err != nil {
		return h.fail(c, err)
	}
	setAttachment(c, sess.Name)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, out)
}

// Sections handles GET /v1/seatmaps/:id/sections.
func (h *SeatMapHandler) Sections(c echo.Context) error {
	sess, doc, err := h.load(c)
	if err != nil {
		return h.fail(c, err)
	}
	info := h.describe(doc)
	info.ID, info.Name, info.Edits = sess.ID, sess.Name, sess.Edits
	return c.JSON(http.StatusOK, info)
}

// Parse handles POST /v1/seatmaps/:id/parse: it resolves an edit request
// against the session's document without changing it.
func (h *SeatMapHandler) Parse(c echo.Context) error {
	var req editor.Request
	if err := c.Bind(&req); err != nil {
		return h.fail(c, errBadRequest)
	}
	_, doc, err := h.load(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Engine.Preview(doc, req)
	if err != nil {
		return h.fail(c, err)
	}
	idx := editor.BuildIndex(doc, nil)
	var chunks []chunkView
	texts := []string{req.RangeText}
	if req.MultiTier {
		texts = texts[:0]
		for _, g := range req.Groups {
			texts = append(texts, g.RangeText)
		}
	}
	for _, text := range texts {
		for _, ch := range idx.Parse(text).Chunks {
			cv := chunkView{Text: ch.Text, Section: ch.Section, Seats: []string{}}
			for _, k := range ch.Keys {
				cv.Seats = append(cv.Seats, idx.DisplayKey(k))
			}
			chunks = append(chunks, cv)
		}
	}
	if chunks == nil {
		chunks = []chunkView{}
	}
	return c.JSON(http.StatusOK, echo.Map{"result": res, "chunks": chunks})
}

// Apply handles POST /v1/seatmaps/:id/apply.  The session is locked for the
// duration of the edit; a concurrent apply gets 409.
func (h *SeatMapHandler) Apply(c echo.Context) error {
	var req editor.Request
	if err := c.Bind(&req); err != nil {
		return h.fail(c, errBadRequest)
	}
	if _, err := req.Mode(); err != nil {
		return h.fail(c, err)
	}
	id := c.Param("id")
	ctx, cancel := h.ctx(c)
	defer cancel()

	unlock, err := h.Store.Lock(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	defer unlock()

	sess, err := h.Store.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	doc, err := model.LoadDocument(sess.Document)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Engine.Apply(doc, req)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := doc.Encode()
	if err != nil {
		return h.fail(c, err)
	}
	sess.Document = out
	sess.Edits++
	if err := h.Store.Save(ctx, sess); err != nil {
		return h.fail(c, err)
	}
	unlock()

	h.afterApply(ctx, sess, middleware.Actor(c), req, res)
	return c.JSON(http.StatusOK, echo.Map{"id": sess.ID, "edits": sess.Edits, "result": res})
}

// Summary handles GET /v1/seatmaps/:id/summary.
func (h *SeatMapHandler) Summary(c echo.Context) error {
	_, doc, err := h.load(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, editor.Summarize(doc))
}

// SummaryXLSX handles GET /v1/seatmaps/:id/summary.xlsx.
func (h *SeatMapHandler) SummaryXLSX(c echo.Context) error {
	sess, doc, err := h.load(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := report.SummaryWorkbook(editor.Summarize(doc))
	if err != nil {
		return h.fail(c, err)
	}
	base := strings.TrimSuffix(sess.Name, filepath.Ext(sess.Name))
	setAttachment(c, base+"-summary.xlsx")
	return c.Blob(http.StatusOK, mimeXLSX, data)
}

// Edits handles GET /v1/seatmaps/:id/edits?limit=n and lists the audit
// trail newest first.
func (h *SeatMapHandler) Edits(c echo.Context) error {
	if h.Audit == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{"error": errAuditAbsent.Error()})
	}
	ctx, cancel := h.ctx(c)
	defer cancel()
	id := c.Param("id")
	if _, err := h.Store.Get(ctx, id); err != nil {
		return h.fail(c, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	edits, err := h.Audit.ListBySession(ctx, id, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "edits": edits})
}

// Delete handles DELETE /v1/seatmaps/:id.  The audit trail is kept.
func (h *SeatMapHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	ctx, cancel := h.ctx(c)
	defer cancel()
	if err := h.Store.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	h.invalidate(ctx, id)
	return c.NoContent(http.StatusNoContent)
}

// ApplyOnce handles POST /v1/apply: a multipart upload of "file" plus a
// "request" JSON field, answered with the edited document, the result and
// the summary.  Nothing is stored.
func (h *SeatMapHandler) ApplyOnce(c echo.Context) error {
	_, data, err := h.readUpload(c)
	if err != nil {
		return h.fail(c, err)
	}
	raw := c.FormValue("request")
	if strings.TrimSpace(raw) == "" {
		return h.fail(c, errNoRequest)
	}
	var req editor.Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return h.fail(c, errBadRequest)
	}
	doc, err := model.LoadDocument(data)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Engine.Apply(doc, req)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := doc.Encode()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"document": json.RawMessage(out),
		"result":   res,
		"summary":  editor.Summarize(doc),
	})
}

func (h *SeatMapHandler) afterApply(ctx context.Context, sess *store.Session, actor string, req editor.Request, res *editor.Result) {
	h.invalidate(ctx, sess.ID)

	if h.Audit != nil {
		reqJSON, _ := json.Marshal(req)
		edit := &repository.Edit{
			SessionID: sess.ID,
			Actor:     actor,
			Mode:      string(res.Mode),
			Request:   reqJSON,
			Matched:   len(res.Matched),
			Missing:   len(res.Missing),
			Updated:   len(res.Updated),
			Blocked:   len(res.Blocked),
		}
		if err := h.Audit.Record(ctx, edit); err != nil {
			h.Log.Warn("audit: record edit failed", zap.String("session", sess.ID), zap.Error(err))
		}
	}

	if h.Events != nil {
		updated := make([]string, 0, len(res.Updated))
		for _, s := range res.Updated {
			updated = append(updated, s.Seat)
		}
		ev := queue.SeatMapEditedEvent{
			SessionID:   sess.ID,
			Name:        sess.Name,
			Actor:       actor,
			Mode:        string(res.Mode),
			Matched:     len(res.Matched),
			Missing:     len(res.Missing),
			Updated:     updated,
			Blocked:     len(res.Blocked),
			Unparsed:    len(res.Unparsed),
			Available:   res.Available,
			Unavailable: res.Unavailable,
			EditedAt:    sess.UpdatedAt.UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := h.Events.PublishSeatMapEdited(ctx, ev); err != nil {
				h.Log.Warn("events: publish seatmap.edited failed", zap.String("session", ev.SessionID), zap.Error(err))
			}
		}()
	}
}

func (h *SeatMapHandler) invalidate(ctx context.Context, id string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx, id); err != nil {
		h.Log.Warn("cache: invalidate failed", zap.String("session", id), zap.Error(err))
	}
}

func (h *SeatMapHandler) load(c echo.Context) (*store.Session, *model.Document, error) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	sess, err := h.Store.Get(ctx, c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	doc, err := model.LoadDocument(sess.Document)
	if err != nil {
		return nil, nil, err
	}
	return sess, doc, nil
}

func (h *SeatMapHandler) readUpload(c echo.Context) (string, []byte, error) {
	r := c.Request()
	r.Body = http.MaxBytesReader(c.Response(), r.Body, h.MaxUploadBytes)
	name := c.QueryParam("name")

	var data []byte
	if strings.HasPrefix(r.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			if tooLarge(err) {
				return "", nil, errTooLarge
			}
			return "", nil, errNoDocument
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		if data, err = io.ReadAll(f); err != nil {
			return "", nil, err
		}
		if name == "" {
			name = fh.Filename
		}
	} else {
		var err error
		if data, err = io.ReadAll(r.Body); err != nil {
			if tooLarge(err) {
				return "", nil, errTooLarge
			}
			return "", nil, err
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil, errNoDocument
	}
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "" || name == "." || name == "/" {
		name = defaultDocName
	}
	return name, data, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func (h *SeatMapHandler) describe(doc *model.Document) docInfo {
	idx := editor.BuildIndex(doc, h.Log)
	info := docInfo{
		Sections:   []sectionInfo{},
		Seats:      idx.Len(),
		Unindexed:  idx.Unindexed,
		Collisions: idx.Collisions,
	}
	if info.Collisions == nil {
		info.Collisions = []editor.Collision{}
	}
	pos := map[string]int{}
	for _, name := range idx.Sections() {
		pos[name] = len(info.Sections)
		info.Sections = append(info.Sections, sectionInfo{Name: name})
	}
	idx.Each(func(ref *editor.SeatRef) {
		i, ok := pos[ref.SectionName]
		if !ok {
			return
		}
		info.Sections[i].Seats++
		if ref.Seat.Available() {
			info.Sections[i].Available++
		}
	})
	return info
}

func (h *SeatMapHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

func setAttachment(c echo.Context, name string) {
	name = strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
	if name == "" {
		name = defaultDocName
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
}

// fail maps errors to status codes.  Unexpected errors are logged and hidden
// behind a generic message.
func (h *SeatMapHandler) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrMalformedDocument),
		errors.Is(err, editor.ErrConflictingModes),
		errors.Is(err, editor.ErrNoRanges),
		errors.Is(err, editor.ErrNoPrice),
		errors.Is(err, editor.ErrNoGroups),
		errors.Is(err, editor.ErrUnknownPriceScope),
		errors.Is(err, errNoDocument),
		errors.Is(err, errNoRequest),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrSessionLocked):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		h.Log.Error("seat map request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
