package system

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	"go.uber.org/zap"
)

const (
	defaultReleaseEndpoint = "https://api.github.com/repos/dms-project/dms/releases/latest"

	// maxReleaseResponseSize caps the release API response (1MB)
	maxReleaseResponseSize = 1 << 20

	// unknownVersion is reported when the release check fails
	unknownVersion = "0.0.0"
)

// RemoteVersionResponse reports the latest published release
type RemoteVersionResponse struct {
	Version         string `json:"version"`
	UpdateAvailable bool   `json:"update_available"`
}

// RemoteVersionService checks the release feed for newer versions. Any
// failure degrades to "no update available" instead of an error, the
// frontend polls this endpoint in the background.
type RemoteVersionService struct {
	client         *http.Client
	endpoint       string
	currentVersion string
	logger         *zap.Logger
}

// RemoteVersionOption configures the service
type RemoteVersionOption func(*RemoteVersionService)

// WithReleaseEndpoint overrides the release feed URL
func WithReleaseEndpoint(endpoint string) RemoteVersionOption {
	return func(s *RemoteVersionService) { s.endpoint = endpoint }
}

// WithRemoteVersionLogger sets the logger
func WithRemoteVersionLogger(logger *zap.Logger) RemoteVersionOption {
	return func(s *RemoteVersionService) { s.logger = logger }
}

// NewRemoteVersionService creates a service comparing against currentVersion
func NewRemoteVersionService(currentVersion string, opts ...RemoteVersionOption) *RemoteVersionService {
	s := &RemoteVersionService{
		client:         &http.Client{Timeout: 10 * time.Second},
		endpoint:       defaultReleaseEndpoint,
		currentVersion: currentVersion,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type releasePayload struct {
	TagName string `json:"tag_name"`
}

// Check queries the release feed and compares the published version to the
// running one
func (s *RemoteVersionService) Check(ctx context.Context) *RemoteVersionResponse {
	unavailable := &RemoteVersionResponse{Version: unknownVersion, UpdateAvailable: false}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return unavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("remote version check failed", zap.Error(err))
		return unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("remote version check failed", zap.Int("status", resp.StatusCode))
		return unavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReleaseResponseSize))
	if err != nil {
		return unavailable
	}

	var payload releasePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logger.Debug("remote version response unparseable", zap.Error(err))
		return unavailable
	}

	latest := strings.TrimPrefix(strings.TrimSpace(payload.TagName), "v")
	latestVersion, err := goversion.NewVersion(latest)
	if err != nil {
		return unavailable
	}

	current, err := goversion.NewVersion(strings.TrimPrefix(s.currentVersion, "v"))
	if err != nil {
		// Dev builds have no comparable version, report the release only
		return &RemoteVersionResponse{Version: latestVersion.String(), UpdateAvailable: false}
	}

	return &RemoteVersionResponse{
		Version:         latestVersion.String(),
		UpdateAvailable: latestVersion.GreaterThan(current),
	}
}
