// Package webhook posts opened packs to a Discord webhook as an embed.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
	"github.com/hexapod/packs-go/internal/ports"
)

// Embed colors by the best rarity present in the pack.
const (
	colorLegendary = 0xFFD700
	colorUncommon  = 0x0096FF
	colorCommon    = 0x999999
)

var tierGlyphs = map[domain.RarityTier]string{
	domain.TierCommon:    "⚪",
	domain.TierUncommon:  "🔵",
	domain.TierLegendary: "🟡",
}

// SnapshotFunc renders an optional PNG image of the pull to attach to the
// notification. Nil, or a returned error, drops the attachment.
type SnapshotFunc func(ctx context.Context, pack domain.Pack) ([]byte, error)

// Notifier delivers a "Daily Pack Opening" embed. The richer image-attached
// form is tried first when a snapshot is available; any delivery failure
// falls back to one text-only attempt. Errors are returned for logging but
// never affect pack state.
type Notifier struct {
	httpClient *http.Client
	url        string
	snapshot   SnapshotFunc
	logger     *slog.Logger
}

func NewNotifier(httpClient *http.Client, url string, snapshot SnapshotFunc, logger *slog.Logger) *Notifier {
	return &Notifier{
		httpClient: httpClient,
		url:        strings.TrimRight(url, "/"),
		snapshot:   snapshot,
		logger:     logger,
	}
}

func (n *Notifier) Name() string { return "webhook" }

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
	Image     *embedImage  `json:"image,omitempty"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

func (n *Notifier) PackOpened(ctx context.Context, identity domain.Identity, pack domain.Pack) error {
	if n.snapshot != nil {
		image, err := n.snapshot(ctx, pack)
		if err == nil {
			if err := n.postImage(ctx, identity, pack, image); err == nil {
				return nil
			}
			n.logger.Warn("image webhook failed, falling back to text",
				slog.String("pack_id", pack.ID),
			)
		}
	}
	return n.postText(ctx, identity, pack)
}

func (n *Notifier) postText(ctx context.Context, identity domain.Identity, pack domain.Pack) error {
	body, err := json.Marshal(payload{Embeds: []embed{buildEmbed(identity, pack, false)}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return n.send(req)
}

// postImage sends the embed plus a PNG attachment as Discord multipart:
// a payload_json part followed by the file part.
func (n *Notifier) postImage(ctx context.Context, identity domain.Identity, pack domain.Pack, image []byte) error {
	payloadJSON, err := json.Marshal(payload{Embeds: []embed{buildEmbed(identity, pack, true)}})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
		return fmt.Errorf("write payload part: %w", err)
	}
	part, err := writer.CreateFormFile("file", "pull_snapshot.png")
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return n.send(req)
}

func (n *Notifier) send(req *http.Request) error {
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func buildEmbed(identity domain.Identity, pack domain.Pack, withImage bool) embed {
	e := embed{
		Title: "Daily Pack Opening",
		Color: embedColor(pack),
		Fields: []embedField{
			{Name: "Player", Value: "<@" + identity.ID + ">", Inline: true},
			{Name: "Pull Date", Value: pack.OpenedAt.Format("2006-01-02 at 15:04:05"), Inline: true},
			{Name: "Cards Pulled", Value: formatCardList(pack)},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if withImage {
		e.Image = &embedImage{URL: "attachment://pull_snapshot.png"}
	}
	return e
}

func embedColor(pack domain.Pack) int {
	switch {
	case pack.HasTier(domain.TierLegendary):
		return colorLegendary
	case pack.HasTier(domain.TierUncommon):
		return colorUncommon
	default:
		return colorCommon
	}
}

func formatCardList(pack domain.Pack) string {
	lines := make([]string, len(pack.Cards))
	for i, card := range pack.Cards {
		lines[i] = fmt.Sprintf("%s **%s** (%s)", tierGlyphs[card.Tier], card.Name, card.Tier)
	}
	return strings.Join(lines, "\n")
}

// compile-time interface check
var _ ports.Notifier = (*Notifier)(nil)
