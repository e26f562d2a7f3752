package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"hairly/internal/modules/workflow/domain"
	workflowout "hairly/internal/modules/workflow/port/out"
	apperrors "hairly/internal/platform/errors"
	"hairly/internal/platform/id"
)

const requestIDHeader = "X-Request-ID"

// HTTPGateway talks JSON to the remote analysis service; uploads go as
// multipart with the image in the "file" field.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	ids     id.Generator
	logger  *slog.Logger
}

func NewHTTPGateway(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPGateway {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		ids:     id.UUID{},
		logger:  logger,
	}
}

var _ workflowout.Gateway = (*HTTPGateway)(nil)

func (g *HTTPGateway) Upload(ctx context.Context, image domain.CaptureImage) (domain.UploadReceipt, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, image.FileName))
	mimeType := image.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.UploadReceipt{}, fmt.Errorf("close multipart writer: %w", err)
	}

	var resp uploadResponse
	if err := g.do(ctx, http.MethodPost, "/upload", nil, body, writer.FormDataContentType(), &resp); err != nil {
		return domain.UploadReceipt{}, err
	}
	return domain.UploadReceipt{
		SessionID: resp.SessionID,
		Analysis: domain.AnalysisResult{
			HairType:        resp.Analysis.HairType,
			Confidence:      resp.Analysis.Confidence,
			Characteristics: nonNil(resp.Analysis.Characteristics),
		},
		Message: resp.Message,
	}, nil
}

func (g *HTTPGateway) CarePlan(ctx context.Context, sessionID string) (domain.CarePlanPayload, error) {
	var resp planResponse
	if err := g.do(ctx, http.MethodGet, "/plan", sessionQuery(sessionID), nil, "", &resp); err != nil {
		return domain.CarePlanPayload{}, err
	}
	routine := map[string]any{}
	if len(resp.CarePlan.Routine) > 0 {
		if err := json.Unmarshal(resp.CarePlan.Routine, &routine); err != nil || routine == nil {
			g.logger.Debug("routine is not an object, using empty", "session_id", sessionID)
			routine = map[string]any{}
		}
	}
	return domain.CarePlanPayload{
		Routine:  routine,
		Products: resp.CarePlan.Products.names(),
		HairType: resp.HairAnalysis.HairType,
	}, nil
}

func (g *HTTPGateway) LogProgress(ctx context.Context, sessionID string, req domain.LogRequest) (domain.LogReceipt, error) {
	payload := logRequest{Notes: req.Notes, Rating: req.Rating, PhotoURL: req.PhotoURL}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.LogReceipt{}, fmt.Errorf("encode log request: %w", err)
	}
	var resp logResponse
	if err := g.do(ctx, http.MethodPost, "/log", sessionQuery(sessionID), bytes.NewReader(raw), "application/json", &resp); err != nil {
		return domain.LogReceipt{}, err
	}
	return domain.LogReceipt{LogID: string(resp.LogID), Message: resp.Message}, nil
}

func (g *HTTPGateway) History(ctx context.Context, sessionID string) (domain.HistoryPayload, error) {
	var resp historyResponse
	if err := g.do(ctx, http.MethodGet, "/history", sessionQuery(sessionID), nil, "", &resp); err != nil {
		return domain.HistoryPayload{}, err
	}
	logs := make([]domain.ProgressLogEntry, 0, len(resp.Logs))
	for _, entry := range resp.Logs {
		date := entry.Date
		if date == "" {
			date = entry.Timestamp
		}
		logs = append(logs, domain.ProgressLogEntry{
			ID:       string(entry.ID),
			Date:     date,
			Notes:    entry.Notes,
			Rating:   entry.Rating,
			PhotoURL: entry.PhotoURL,
		})
	}
	total := resp.TotalLogs
	if total == 0 {
		total = len(logs)
	}
	return domain.HistoryPayload{Logs: logs, TotalLogs: total, HairType: resp.HairType}, nil
}

func (g *HTTPGateway) Health(ctx context.Context) (domain.Health, error) {
	raw, err := g.roundTrip(ctx, http.MethodGet, "/", nil, nil, "")
	if err != nil {
		return domain.Health{}, err
	}
	// Any 2xx is online; the message is optional.
	var resp healthResponse
	_ = json.Unmarshal(raw, &resp)
	return domain.Health{Online: true, Message: strings.TrimSpace(resp.Message)}, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	raw, err := g.roundTrip(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (g *HTTPGateway) roundTrip(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := g.ids.New()
	req.Header.Set(requestIDHeader, requestID)

	started := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	g.logger.Debug("request done", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID, "elapsed", time.Since(started))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.ServiceError{Status: resp.StatusCode, Detail: detailOf(raw)}
	}
	return raw, nil
}

// detailOf extracts a string "detail" field; anything else yields "".
func detailOf(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(body.Detail, &text); err != nil {
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

func sessionQuery(sessionID string) url.Values {
	return url.Values{"session_id": []string{sessionID}}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type uploadResponse struct {
	SessionID string `json:"session_id"`
	Analysis  struct {
		HairType        string   `json:"hair_type"`
		Confidence      float64  `json:"confidence"`
		Characteristics []string `json:"characteristics"`
	} `json:"analysis"`
	Message string `json:"message"`
}

type planResponse struct {
	CarePlan struct {
		Routine  json.RawMessage `json:"routine"`
		Products productList     `json:"products"`
	} `json:"care_plan"`
	HairAnalysis struct {
		HairType string `json:"hair_type"`
	} `json:"hair_analysis"`
}

type logRequest struct {
	Notes    string `json:"notes"`
	Rating   int    `json:"rating"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type logResponse struct {
	LogID   flexibleID `json:"log_id"`
	Message string     `json:"message"`
}

type historyResponse struct {
	Logs []struct {
		ID        flexibleID `json:"id"`
		Date      string     `json:"date"`
		Timestamp string     `json:"timestamp"`
		Notes     string     `json:"notes"`
		Rating    int        `json:"rating"`
		PhotoURL  string     `json:"photo_url"`
	} `json:"logs"`
	TotalLogs int    `json:"total_logs"`
	HairType  string `json:"hair_type"`
}

type healthResponse struct {
	Message string `json:"message"`
}

// flexibleID accepts a JSON string or number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*f = ""
		return nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		*f = flexibleID(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", raw)
	}
	*f = flexibleID(number.String())
	return nil
}

// productList accepts product names or objects carrying a "name". Entries of
// any other shape are skipped, and a value that is not a list reads as empty.
type productList []string

func (p *productList) UnmarshalJSON(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*p = []string{}
		return nil
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if obj.Name = strings.TrimSpace(obj.Name); obj.Name != "" {
			names = append(names, obj.Name)
		}
	}
	*p = names
	return nil
}

func (p productList) names() []string {
	if p == nil {
		return []string{}
	}
	return []string(p)
}
