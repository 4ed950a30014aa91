package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

func TestDiscordPost(t *testing.T) {
	var got discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	p := NewDiscord(srv.URL, &logger)

	err := p.Post(context.Background(), "Episode 5 is live\n\nhttps://youtu.be/abc", domain.VideoContext{})
	require.NoError(t, err)
	assert.Equal(t, "Episode 5 is live\n\nhttps://youtu.be/abc", got.Content)
}

func TestDiscordPostErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Invalid Webhook Token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	p := NewDiscord(srv.URL, &logger)

	err := p.Post(context.Background(), "hi", domain.VideoContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestMatrixPost(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotMsg  matrixMessage
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))

		_, _ = w.Write([]byte(`{"event_id": "$evt"}`))
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	p := NewMatrix(srv.URL, "!room:example.org", "tok123", &logger)

	text := "New Docker tutorial.\n\nhttps://youtu.be/abc"
	require.NoError(t, p.Post(context.Background(), text, domain.VideoContext{}))

	assert.True(t, strings.HasPrefix(gotPath, "/_matrix/client/v3/rooms/"), gotPath)
	assert.Contains(t, gotPath, "/send/m.room.message/")
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "m.text", gotMsg.MsgType)
	assert.Equal(t, text, gotMsg.Body)
	assert.Equal(t, "org.matrix.custom.html", gotMsg.Format)
	assert.Contains(t, gotMsg.FormattedBody, `<a href="https://youtu.be/abc">`)
}

func TestMatrixPlainTextNoFormat(t *testing.T) {
	assert.Equal(t, "", formatMatrixHTML("no links here"))
}

func TestBlueskyPostCreatesSessionOnce(t *testing.T) {
	sessions := 0

	var created blueskyCreateRecord

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrpc/com.atproto.server.createSession":
			sessions++

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "tech.bsky.social", creds["identifier"])

			_, _ = w.Write([]byte(`{"accessJwt": "jwt123", "did": "did:plc:abc"}`))
		case "/xrpc/com.atproto.repo.createRecord":
			assert.Equal(t, "Bearer jwt123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))

			_, _ = w.Write([]byte(`{"uri": "at://did:plc:abc/app.bsky.feed.post/1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	p := NewBluesky(srv.URL, "tech.bsky.social", "app-pass", &logger)

	text := "New PC build guide! #Gaming #PC #Tutorial\n\nhttps://youtu.be/abc"
	require.NoError(t, p.Post(context.Background(), text, domain.VideoContext{}))
	require.NoError(t, p.Post(context.Background(), text, domain.VideoContext{}))

	assert.Equal(t, 1, sessions, "session should be reused")
	assert.Equal(t, "did:plc:abc", created.Repo)
	assert.Equal(t, "app.bsky.feed.post", created.Collection)
	assert.Equal(t, text, created.Record.Text)

	// One link facet plus three tag facets.
	require.Len(t, created.Record.Facets, 4)
}

func TestBuildFacets(t *testing.T) {
	text := "Guide time #Gaming #PC\n\nhttps://youtu.be/abc"
	facets := buildFacets(text)
	require.Len(t, facets, 3)

	link := facets[0]
	assert.Equal(t, "app.bsky.richtext.facet#link", link.Features[0].Type)
	assert.Equal(t, "https://youtu.be/abc", link.Features[0].URI)
	assert.Equal(t, "https://youtu.be/abc", text[link.Index.ByteStart:link.Index.ByteEnd])

	tag := facets[1]
	assert.Equal(t, "app.bsky.richtext.facet#tag", tag.Features[0].Type)
	assert.Equal(t, "Gaming", tag.Features[0].Tag)
	assert.Equal(t, "#Gaming", text[tag.Index.ByteStart:tag.Index.ByteEnd])
}

func TestMastodonPost(t *testing.T) {
	var (
		gotStatus mastodonStatus
		gotIdem   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/statuses", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		gotIdem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotStatus))

		_, _ = w.Write([]byte(`{"id": "1"}`))
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	p := NewMastodon(srv.URL, "tok", "", &logger)

	require.NoError(t, p.Post(context.Background(), "New video up #Linux #Server #Guide", domain.VideoContext{}))

	assert.Equal(t, "New video up #Linux #Server #Guide", gotStatus.Status)
	assert.Equal(t, "public", gotStatus.Visibility)
	assert.NotEmpty(t, gotIdem)
}
