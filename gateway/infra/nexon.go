package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ranking-gateway/gateway/domain"
	"ranking-gateway/gateway/metrics"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultRankingURL é o endpoint público de ranking da região NA.
const DefaultRankingURL = "https://www.nexon.com/api/maplestory/no-auth/ranking/v2/na"

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxBodyBytes     = 1 << 20
)

// NexonClient faz um GET por chamada no ranking e devolve a primeira linha de `ranks`.
// Não faz retry: quem decide repetir é o cliente do gateway.
type NexonClient struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	log       *zap.Logger
}

type NexonOption func(*NexonClient)

func WithHTTPClient(c *http.Client) NexonOption {
	return func(n *NexonClient) { n.http = c }
}

func WithUserAgent(ua string) NexonOption {
	return func(n *NexonClient) { n.userAgent = ua }
}

func WithNexonLogger(l *zap.Logger) NexonOption {
	return func(n *NexonClient) { n.log = l }
}

func NewNexonClient(baseURL string, timeout time.Duration, opts ...NexonOption) (*NexonClient, error) {
	if baseURL == "" {
		baseURL = DefaultRankingURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ranking url: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &NexonClient{
		base:      u,
		http:      newHTTPClient(timeout),
		userAgent: defaultUserAgent,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// FetchOverall implementa domain.RankingClient.
func (c *NexonClient) FetchOverall(ctx context.Context, name string) (*domain.RankRow, error) {
	q := url.Values{}
	q.Set("type", "overall")
	q.Set("id", "weekly")
	q.Set("reboot_index", "0")
	q.Set("page_index", "1")
	q.Set("character_name", name)
	return c.firstRow(ctx, "overall", q)
}

// FetchLegion implementa domain.RankingClient.
func (c *NexonClient) FetchLegion(ctx context.Context, name string, worldID, rebootIndex int) (*domain.RankRow, error) {
	q := url.Values{}
	q.Set("type", "legion")
	q.Set("id", strconv.Itoa(worldID))
	q.Set("reboot_index", strconv.Itoa(rebootIndex))
	q.Set("page_index", "1")
	q.Set("character_name", name)
	return c.firstRow(ctx, "legion", q)
}

func (c *NexonClient) firstRow(ctx context.Context, kind string, q url.Values) (*domain.RankRow, error) {
	body, err := c.get(ctx, kind, q)
	if err != nil {
		return nil, err
	}
	return FirstRankRow(body), nil
}

func (c *NexonClient) get(ctx context.Context, kind string, q url.Values) ([]byte, error) {
	u := *c.base
	merged := u.Query()
	for k, v := range q {
		merged[k] = v
	}
	u.RawQuery = merged.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.UpstreamError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(kind, "error").Inc()
		c.log.Warn("ranking request failed",
			zap.String("kind", kind),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(kind, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.Debug("ranking response",
		zap.String("kind", kind),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &domain.UpstreamError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// FirstRankRow extrai ranks[0] do corpo. Qualquer formato inesperado
// (JSON inválido, ranks ausente, vazio ou não-objeto) vira "nenhuma linha".
func FirstRankRow(body []byte) *domain.RankRow {
	if !gjson.ValidBytes(body) {
		return nil
	}
	row := gjson.GetBytes(body, "ranks.0")
	if !row.IsObject() {
		return nil
	}
	return &domain.RankRow{
		CharacterID:     row.Get("CharacterID").Int(),
		CharacterName:   row.Get("CharacterName").String(),
		CharacterImgURL: row.Get("CharacterImgURL").String(),
		Exp:             row.Get("Exp").Int(),
		Gap:             row.Get("Gap").Int(),
		JobName:         row.Get("JobName").String(),
		Level:           int(row.Get("Level").Int()),
		Rank:            row.Get("Rank").Int(),
		StartRank:       row.Get("StartRank").Int(),
		WorldID:         int(row.Get("WorldID").Int()),
		IsSearchTarget:  row.Get("IsSearchTarget").Bool(),
		LegionLevel:     int(row.Get("LegionLevel").Int()),
		RaidPower:       row.Get("RaidPower").Int(),
		TierID:          int(row.Get("TierID").Int()),
		Score:           row.Get("Score").Int(),
	}
}
