package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"rinktally/internal/stats"
)

const (
	endpointGetStats      = "/api/get_stats"
	endpointUpdateStat    = "/api/update_stat"
	endpointResetStats    = "/api/reset_stats"
	endpointExportSummary = "/api/export_summary"

	// DefaultExportFilename is used when the backend sends no usable name
	DefaultExportFilename = "stats_summary.csv"
)

type statsResponse struct {
	Success *bool                        `json:"success,omitempty"`
	Message string                       `json:"message,omitempty"`
	Stats   map[string]stats.PlayerStats `json:"stats"`
}

type updateRequest struct {
	PlayerNum int    `json:"player_num"`
	StatType  string `json:"stat_type"`
	Change    int    `json:"change"`
}

type updateResponse struct {
	Success  bool   `json:"success"`
	NewValue *int   `json:"new_value"`
	Message  string `json:"message,omitempty"`
}

// Export is a downloaded summary
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GetStats fetches the authoritative counters for every player
func (c *Client) GetStats(ctx context.Context) (map[int]stats.PlayerStats, error) {
	var out statsResponse
	if err := c.doJSON(ctx, http.MethodGet, endpointGetStats, nil, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, rejected(endpointGetStats, out.Message)
	}
	if out.Stats == nil {
		return nil, fmt.Errorf("%s: %w: missing stats", endpointGetStats, ErrBadResponse)
	}
	return decodePlayers(endpointGetStats, out.Stats)
}

// UpdateStat asks the backend to move one counter by change and returns
// the value the backend settled on
func (c *Client) UpdateStat(ctx context.Context, player int, stat stats.StatType, change int) (int, error) {
	body := updateRequest{PlayerNum: player, StatType: string(stat), Change: change}

	var out updateResponse
	if err := c.doJSON(ctx, http.MethodPost, endpointUpdateStat, body, &out); err != nil {
		return 0, err
	}
	if !out.Success {
		return 0, rejected(endpointUpdateStat, out.Message)
	}
	if out.NewValue == nil {
		return 0, fmt.Errorf("%s: %w: missing new_value", endpointUpdateStat, ErrBadResponse)
	}
	return *out.NewValue, nil
}

// ResetStats zeroes every counter on the backend and returns the new state
func (c *Client) ResetStats(ctx context.Context) (map[int]stats.PlayerStats, error) {
	var out statsResponse
	if err := c.doJSON(ctx, http.MethodPost, endpointResetStats, nil, &out); err != nil {
		return nil, err
	}
	if out.Success == nil || !*out.Success {
		return nil, rejected(endpointResetStats, out.Message)
	}
	if out.Stats == nil {
		return nil, fmt.Errorf("%s: %w: missing stats", endpointResetStats, ErrBadResponse)
	}
	return decodePlayers(endpointResetStats, out.Stats)
}

// ExportSummary downloads the server generated summary
func (c *Client) ExportSummary(ctx context.Context) (*Export, error) {
	resp, err := c.do(ctx, http.MethodGet, endpointExportSummary, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpointExportSummary, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read body: %w", endpointExportSummary, err)
	}

	return &Export{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Ping reports whether the backend answers get_stats with a 2xx status
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, endpointGetStats, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxJSONBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Endpoint: endpointGetStats, StatusCode: resp.StatusCode}
	}
	return nil
}

// FilenameFromDisposition extracts filename= from a Content-Disposition
// header, falling back to DefaultExportFilename
func FilenameFromDisposition(header string) string {
	if header == "" {
		return DefaultExportFilename
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}

	// Lenient path for unquoted names with spaces, which ParseMediaType rejects
	idx := strings.Index(strings.ToLower(header), "filename=")
	if idx < 0 {
		return DefaultExportFilename
	}
	name := header[idx+len("filename="):]
	if semi := strings.IndexByte(name, ';'); semi >= 0 {
		name = name[:semi]
	}
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return DefaultExportFilename
	}
	return name
}

func decodePlayers(endpoint string, raw map[string]stats.PlayerStats) (map[int]stats.PlayerStats, error) {
	players := make(map[int]stats.PlayerStats, len(raw))
	for key, ps := range raw {
		num, err := strconv.Atoi(key)
		if err != nil || num <= 0 {
			return nil, fmt.Errorf("%s: %w: bad player number %q", endpoint, ErrBadResponse, key)
		}
		players[num] = ps
	}
	return players, nil
}

func rejected(endpoint, message string) error {
	if message == "" {
		return fmt.Errorf("%s: %w", endpoint, ErrRejected)
	}
	return fmt.Errorf("%s: %w: %s", endpoint, ErrRejected, message)
}
