package social

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

var matrixURLPattern = regexp.MustCompile(`https?://\S+`)

// MatrixPoster sends m.room.message events with an access token. Each send
// uses a fresh transaction ID so homeserver retries stay idempotent.
type MatrixPoster struct {
	homeserver  string
	roomID      string
	accessToken string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *zerolog.Logger
}

func NewMatrix(homeserver, roomID, accessToken string, logger *zerolog.Logger) *MatrixPoster {
	return &MatrixPoster{
		homeserver:  strings.TrimRight(homeserver, "/"),
		roomID:      roomID,
		accessToken: accessToken,
		client:      newHTTPClient(),
		limiter:     newPostLimiter(),
		logger:      logger,
	}
}

func (p *MatrixPoster) Name() string { return domain.PlatformMatrix }

type matrixMessage struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

func (p *MatrixPoster) Post(ctx context.Context, text string, _ domain.VideoContext) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("post limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/_matrix/client/v3/rooms/%s/send/m.room.message/%s",
		p.homeserver, url.PathEscape(p.roomID), uuid.NewString())

	msg := matrixMessage{
		MsgType: "m.text",
		Body:    text,
	}

	// Render the plain link as an anchor so clients show it clickable.
	if formatted := formatMatrixHTML(text); formatted != "" {
		msg.Format = "org.matrix.custom.html"
		msg.FormattedBody = formatted
	}

	headers := map[string]string{
		headerAuthorization: "Bearer " + p.accessToken,
	}

	if err := doJSON(ctx, p.client, http.MethodPut, endpoint, headers, msg, nil); err != nil {
		return err
	}

	p.logger.Info().Str("platform", p.Name()).Str("room_id", p.roomID).Msg("posted announcement")

	return nil
}

// formatMatrixHTML escapes the text and wraps any URL in an anchor tag.
// Returns "" when the text has no URL, letting the event stay plain.
func formatMatrixHTML(text string) string {
	if !matrixURLPattern.MatchString(text) {
		return ""
	}

	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\n", "<br/>")

	return matrixURLPattern.ReplaceAllStringFunc(escaped, func(u string) string {
		return fmt.Sprintf(`<a href=%q>%s</a>`, u, u)
	})
}
