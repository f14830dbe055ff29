package estimator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/lasercalc/internal/errors"
	"github.com/agbru/lasercalc/internal/metrics"
	"github.com/agbru/lasercalc/internal/params"
	"github.com/agbru/lasercalc/internal/report"
	"github.com/agbru/lasercalc/internal/selection"
)

const successBody = `{"formatted_time":"12.3s","transit_time_seconds":1.0,"total_distance_burned_mm":50,"total_distance_transit_mm":5,"layer_breakdown":{"cut":{"time":5,"distance":20},"mark":{"time":3,"distance":10},"raster":{"time":4,"area":100}}}`

func drawing() selection.SourceFile {
	return selection.NewSourceFile("plate.svg", "", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain", "http://127.0.0.1:8000", "http://127.0.0.1:8000", false},
		{"trailing slash", "https://estimator.local/", "https://estimator.local", false},
		{"with prefix", "http://host/laser/", "http://host/laser", false},
		{"no scheme", "127.0.0.1:8000", "", true},
		{"ftp", "ftp://host", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tt.url)
			if tt.wantErr {
				var cfgErr apperrors.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestCompute_WireContract(t *testing.T) {
	t.Parallel()
	p := params.Defaults().With(params.CutSpeed, 12.5)
	fixedID := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

	type capture struct {
		fields   map[string]string
		fileType string
		fileName string
		fileData string
		method   string
		path     string
		id       string
	}
	captured := make(chan capture, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got := capture{fields: map[string]string{}, method: r.Method, path: r.URL.Path, id: r.Header.Get("X-Request-ID")}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		fh := r.MultipartForm.File[FileField][0]
		got.fileName = fh.Filename
		got.fileType = fh.Header.Get("Content-Type")
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		got.fileData = string(data)
		captured <- got
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, successBody)
	})
	c.newID = func() uuid.UUID { return fixedID }

	rep, err := c.Compute(context.Background(), drawing(), p)
	require.NoError(t, err)
	assert.Equal(t, "12.3s", rep.FormattedTime)

	got := <-captured
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, CalculatePath, got.path)
	assert.Equal(t, fixedID.String(), got.id)
	assert.Equal(t, "plate.svg", got.fileName)
	assert.Equal(t, selection.SVGMediaType, got.fileType)
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg"/>`, got.fileData)
	assert.Equal(t, map[string]string{
		"cut_speed":            "12.5",
		"vector_engrave_speed": "50",
		"raster_engrave_speed": "100",
		"transit_speed":        "200",
		"scan_gap":             "0.1",
		"ppi":                  "25.4",
		"accel":                "500",
		"junction_delay":       "0.05",
		"burn_dwell":           "0.1",
	}, got.fields)
}

func TestCompute_Success(t *testing.T) {
	t.Parallel()
	m := metrics.NewMetrics()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, successBody)
	}, WithMetrics(m))

	rep, err := c.Compute(context.Background(), drawing(), params.Defaults())
	require.NoError(t, err)
	assert.Equal(t, report.Report{
		FormattedTime:          "12.3s",
		TransitTimeSeconds:     1,
		TotalDistanceBurnedMM:  50,
		TotalDistanceTransitMM: 5,
		Layers: report.Layers{
			Cut:    report.Timed{Time: 5, Distance: 20},
			Mark:   report.Timed{Time: 3, Distance: 10},
			Raster: report.Raster{Time: 4, Area: 100},
		},
	}, rep)
}

func TestCompute_ServiceErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"invalid SVG"}`, "invalid SVG"},
		{"detail from service", http.StatusInternalServerError, `{"detail":"Error processing SVG: bad path"}`, "Error processing SVG: bad path"},
		{"no detail", http.StatusInternalServerError, `{"error":"boom"}`, apperrors.GenericFailureMessage},
		{"empty detail", http.StatusBadRequest, `{"detail":""}`, apperrors.GenericFailureMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, apperrors.GenericFailureMessage},
		{"empty body", http.StatusServiceUnavailable, ``, apperrors.GenericFailureMessage},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","cut_speed"],"msg":"field required"},{"loc":["body","file"],"msg":"file missing"}]}`, "field required; file missing"},
		{"detail object", http.StatusBadRequest, `{"detail":{"code":1}}`, apperrors.GenericFailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			rep, err := c.Compute(context.Background(), drawing(), params.Defaults())
			var svcErr *apperrors.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.status, svcErr.StatusCode)
			assert.Equal(t, tt.want, svcErr.Detail)
			assert.Equal(t, tt.want, apperrors.UserMessage(err))
			assert.Equal(t, report.Report{}, rep)
		})
	}
}

func TestCompute_DecodeError(t *testing.T) {
	t.Parallel()
	body := strings.Replace(successBody, `"cut":{"time":5,`, `"cut":{`, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	})
	_, err := c.Compute(context.Background(), drawing(), params.Defaults())
	var decErr *apperrors.DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "layer_breakdown.cut.time", decErr.Field)
}

func TestCompute_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Compute(context.Background(), drawing(), params.Defaults())
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout, "expected a timeout, got %v", err)
	assert.Equal(t, 50*time.Millisecond, netErr.Limit)
	assert.Equal(t, apperrors.ExitErrorNetwork, apperrors.ExitCode(err))
}

func TestCompute_Canceled(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The server only notices a departed client once the body is consumed.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := c.Compute(ctx, drawing(), params.Defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Equal(t, apperrors.ExitErrorCanceled, apperrors.ExitCode(err))
}

func TestCompute_Unreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url)
	require.NoError(t, err)
	_, err = c.Compute(context.Background(), drawing(), params.Defaults())
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.False(t, netErr.Timeout)
	assert.Equal(t, url+CalculatePath, netErr.URL)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr any
	}{
		{"ok", http.StatusOK, `{"status":"ok"}`, nil},
		{"degraded", http.StatusOK, `{"status":"degraded"}`, &apperrors.ServiceError{}},
		{"not found", http.StatusNotFound, `{"detail":"Not Found"}`, &apperrors.ServiceError{}},
		{"garbage", http.StatusOK, `nope`, &apperrors.DecodeError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != HealthPath || r.Method != http.MethodGet {
					http.NotFound(w, r)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := c.Health(context.Background())
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
			case *apperrors.ServiceError:
				require.ErrorAs(t, err, &want)
			case *apperrors.DecodeError:
				require.ErrorAs(t, err, &want)
			}
		})
	}
}

func TestExtractDetail(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "File must be an SVG", extractDetail([]byte(`{"detail":"File must be an SVG"}`)))
	assert.Equal(t, apperrors.GenericFailureMessage, extractDetail([]byte(`{"detail":null}`)))
	assert.Equal(t, apperrors.GenericFailureMessage, extractDetail([]byte(`{"detail":[]}`)))
	assert.Equal(t, apperrors.GenericFailureMessage, extractDetail(nil))
}

func TestEncodeForm_EscapesFilename(t *testing.T) {
	t.Parallel()
	file := selection.NewSourceFile(`my "plate".svg`, "", []byte("x"))
	body, contentType, err := encodeForm(file, params.Defaults())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, string(body), `filename="my \"plate\".svg"`)
}
