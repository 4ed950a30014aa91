package social

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

const defaultPDSHost = "https://bsky.social"

var (
	blueskyURLPattern = regexp.MustCompile(`https?://\S+`)
	blueskyTagPattern = regexp.MustCompile(`#(\w+)`)
)

// BlueskyPoster talks to the AT Protocol XRPC endpoints directly: one
// createSession to log in, then createRecord per post. Links and hashtags
// are attached as facets over byte ranges; Bluesky renders nothing as
// clickable on its own.
type BlueskyPoster struct {
	host        string
	handle      string
	appPassword string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *zerolog.Logger

	mu        sync.Mutex
	accessJWT string
	did       string
}

func NewBluesky(host, handle, appPassword string, logger *zerolog.Logger) *BlueskyPoster {
	if host == "" {
		host = defaultPDSHost
	}

	return &BlueskyPoster{
		host:        strings.TrimRight(host, "/"),
		handle:      handle,
		appPassword: appPassword,
		client:      newHTTPClient(),
		limiter:     newPostLimiter(),
		logger:      logger,
	}
}

func (p *BlueskyPoster) Name() string { return domain.PlatformBluesky }

type blueskySession struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

type blueskyFacet struct {
	Index    blueskyByteSlice `json:"index"`
	Features []blueskyFeature `json:"features"`
}

type blueskyByteSlice struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type blueskyFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

type blueskyPostRecord struct {
	Type      string         `json:"$type"`
	Text      string         `json:"text"`
	CreatedAt string         `json:"createdAt"`
	Facets    []blueskyFacet `json:"facets,omitempty"`
}

type blueskyCreateRecord struct {
	Repo       string            `json:"repo"`
	Collection string            `json:"collection"`
	Record     blueskyPostRecord `json:"record"`
}

func (p *BlueskyPoster) Post(ctx context.Context, text string, _ domain.VideoContext) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("post limiter: %w", err)
	}

	jwt, did, err := p.session(ctx)
	if err != nil {
		return fmt.Errorf("bluesky login: %w", err)
	}

	record := blueskyCreateRecord{
		Repo:       did,
		Collection: "app.bsky.feed.post",
		Record: blueskyPostRecord{
			Type:      "app.bsky.feed.post",
			Text:      text,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Facets:    buildFacets(text),
		},
	}

	headers := map[string]string{
		headerAuthorization: "Bearer " + jwt,
	}

	err = doJSON(ctx, p.client, http.MethodPost, p.host+"/xrpc/com.atproto.repo.createRecord", headers, record, nil)
	if err != nil {
		// Session may have expired; drop it so the next post logs in again.
		p.mu.Lock()
		p.accessJWT = ""
		p.mu.Unlock()

		return err
	}

	p.logger.Info().Str("platform", p.Name()).Str("handle", p.handle).Msg("posted announcement")

	return nil
}

func (p *BlueskyPoster) session(ctx context.Context) (string, string, error) {
	p.mu.Lock()
	if p.accessJWT != "" {
		jwt, did := p.accessJWT, p.did
		p.mu.Unlock()

		return jwt, did, nil
	}
	p.mu.Unlock()

	var sess blueskySession

	payload := map[string]string{
		"identifier": p.handle,
		"password":   p.appPassword,
	}

	err := doJSON(ctx, p.client, http.MethodPost, p.host+"/xrpc/com.atproto.server.createSession", nil, payload, &sess)
	if err != nil {
		return "", "", err
	}

	p.mu.Lock()
	p.accessJWT = sess.AccessJWT
	p.did = sess.DID
	p.mu.Unlock()

	return sess.AccessJWT, sess.DID, nil
}

// buildFacets marks every URL as a link facet and every hashtag as a tag
// facet. The AT Protocol addresses facets by byte position into the UTF-8
// text, not by rune.
func buildFacets(text string) []blueskyFacet {
	var facets []blueskyFacet

	for _, loc := range blueskyURLPattern.FindAllStringIndex(text, -1) {
		facets = append(facets, blueskyFacet{
			Index: blueskyByteSlice{ByteStart: loc[0], ByteEnd: loc[1]},
			Features: []blueskyFeature{{
				Type: "app.bsky.richtext.facet#link",
				URI:  text[loc[0]:loc[1]],
			}},
		})
	}

	for _, loc := range blueskyTagPattern.FindAllStringSubmatchIndex(text, -1) {
		facets = append(facets, blueskyFacet{
			Index: blueskyByteSlice{ByteStart: loc[0], ByteEnd: loc[1]},
			Features: []blueskyFeature{{
				Type: "app.bsky.richtext.facet#tag",
				Tag:  text[loc[2]:loc[3]],
			}},
		})
	}

	return facets
}
