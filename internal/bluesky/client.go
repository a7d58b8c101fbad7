// Package bluesky is the adapter for the external Bluesky platform. It owns
// session establishment, handle resolution, and the two outbound actions the
// dispatch engine performs: direct messages and public posts. Every call
// authenticates a fresh session for the supplied credentials; failures are
// normalized into structured application errors at this boundary.
package bluesky

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/audit"
	"github.com/skyreach/outreach-server-go/internal/model"
)

// DIDStore is the narrow slice of the account repository this adapter needs:
// recording the platform-resolved DID and login freshness after a successful
// session. This is the single point where the adapter mutates account state.
type DIDStore interface {
	UpdateDID(ctx context.Context, id, did string) error
	TouchLastLogin(ctx context.Context, id string) error
}

// PostResult is the provider-assigned identity of a created post.
type PostResult struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}

// DMResult is the provider-assigned identity of a sent direct message.
type DMResult struct {
	ConvoID      string `json:"convoId"`
	MessageID    string `json:"messageId"`
	TargetDID    string `json:"targetDid"`
	TargetHandle string `json:"targetHandle"`
}

// Follower is a profile summary returned by GetFollowers.
type Follower struct {
	Handle      string `json:"handle"`
	DID         string `json:"did"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type session struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

type Client struct {
	xrpc     *xrpcClient
	didStore DIDStore

	// Shared agent: one long-lived session for the configured default
	// identity, reused across calls that are not tied to a managed account.
	// Guarded by sharedMu, distinct from the per-account dispatch lock.
	sharedIdentifier string
	sharedPassword   string
	sharedMu         sync.Mutex
	sharedSession    *session
}

func NewClient(serviceURL, sharedIdentifier, sharedPassword string, didStore DIDStore) *Client {
	return &Client{
		xrpc: &xrpcClient{
			serviceURL: serviceURL,
			http:       &http.Client{Timeout: 30 * time.Second},
		},
		didStore:         didStore,
		sharedIdentifier: sharedIdentifier,
		sharedPassword:   sharedPassword,
	}
}

// InitShared logs in the shared identity at startup. Missing shared
// credentials are not an error; account-based logins still work.
func (c *Client) InitShared(ctx context.Context) {
	if c.sharedIdentifier == "" || c.sharedPassword == "" {
		log.Warn().Msg("shared bluesky credentials not configured; using account-based logins only")
		return
	}

	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()

	sess, err := c.createSession(ctx, c.sharedIdentifier, c.sharedPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize shared bluesky session")
		return
	}
	c.sharedSession = sess
	log.Info().Str("handle", sess.Handle).Msg("shared bluesky session initialized")
}

// CloseShared drops the shared session.
func (c *Client) CloseShared() {
	c.sharedMu.Lock()
	c.sharedSession = nil
	c.sharedMu.Unlock()
}

func (c *Client) createSession(ctx context.Context, identifier, password string) (*session, error) {
	var sess session
	err := c.xrpc.procedure(ctx, "com.atproto.server.createSession", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &sess, callOpts{})
	if err != nil {
		return nil, normalizeError("logging in as "+identifier, err)
	}
	return &sess, nil
}

// login authenticates the supplied account credentials. On success, if the
// platform-resolved DID differs from the one stored on the account, the
// stored DID is updated.
func (c *Client) login(ctx context.Context, creds model.AccountCredentials) (*session, error) {
	sess, err := c.createSession(ctx, creds.Handle, creds.Password)
	if err != nil {
		accountID := ""
		if creds.Account != nil {
			accountID = creds.Account.ID
		}
		audit.Log(audit.Event{
			Type:      audit.EventLoginFailure,
			AccountID: accountID,
			Details:   map[string]interface{}{"handle": creds.Handle},
		})
		return nil, err
	}

	if creds.Account != nil && c.didStore != nil {
		if creds.Account.DID == nil || *creds.Account.DID != sess.DID {
			if err := c.didStore.UpdateDID(ctx, creds.Account.ID, sess.DID); err != nil {
				log.Error().Err(err).Str("accountId", creds.Account.ID).Msg("failed to update account DID")
			} else {
				log.Info().
					Str("handle", creds.Handle).
					Str("did", sess.DID).
					Msg("account DID updated from session")
			}
		}
		if err := c.didStore.TouchLastLogin(ctx, creds.Account.ID); err != nil {
			log.Error().Err(err).Str("accountId", creds.Account.ID).Msg("failed to touch last login")
		}
	}

	return sess, nil
}

// sharedAgent returns the shared session, resuming or re-authenticating as
// needed.
func (c *Client) sharedAgent(ctx context.Context) (*session, error) {
	if c.sharedIdentifier == "" || c.sharedPassword == "" {
		return nil, normalizeError("shared session",
			&requestError{Message: "BLUESKY_IDENTIFIER and BLUESKY_APP_PASSWORD are not configured"})
	}

	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()

	if c.sharedSession != nil {
		var out struct {
			DID string `json:"did"`
		}
		err := c.xrpc.query(ctx, "com.atproto.server.getSession", nil, &out,
			callOpts{accessJwt: c.sharedSession.AccessJwt})
		if err == nil {
			return c.sharedSession, nil
		}
		log.Warn().Err(err).Msg("failed to resume shared bluesky session; re-authenticating")
		c.sharedSession = nil
	}

	sess, err := c.createSession(ctx, c.sharedIdentifier, c.sharedPassword)
	if err != nil {
		return nil, err
	}
	c.sharedSession = sess
	return sess, nil
}

// ResolveHandle resolves a handle to its DID using the shared session when
// available, falling back to an unauthenticated lookup.
func (c *Client) resolveHandle(ctx context.Context, sess *session, handle string) (string, error) {
	params := url.Values{"handle": {handle}}
	var out struct {
		DID string `json:"did"`
	}
	opts := callOpts{}
	if sess != nil {
		opts.accessJwt = sess.AccessJwt
	}
	if err := c.xrpc.query(ctx, "com.atproto.identity.resolveHandle", params, &out, opts); err != nil {
		return "", normalizeError("resolving handle "+handle, err)
	}
	if out.DID == "" {
		return "", normalizeError("resolving handle "+handle,
			&requestError{Message: "NotFound: empty DID in response"})
	}
	return out.DID, nil
}

// SendPost publishes one public post as the supplied account.
func (c *Client) SendPost(ctx context.Context, creds model.AccountCredentials, text string, langs []string) (*PostResult, error) {
	sess, err := c.login(ctx, creds)
	if err != nil {
		return nil, err
	}

	record := map[string]any{
		"$type":     "app.bsky.feed.post",
		"text":      text,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	}
	if len(langs) > 0 {
		record["langs"] = langs
	}

	var result PostResult
	err = c.xrpc.procedure(ctx, "com.atproto.repo.createRecord", map[string]any{
		"repo":       sess.DID,
		"collection": "app.bsky.feed.post",
		"record":     record,
	}, &result, callOpts{accessJwt: sess.AccessJwt})
	if err != nil {
		return nil, normalizeError("creating post as "+creds.Handle, err)
	}

	log.Info().Str("handle", creds.Handle).Str("uri", result.URI).Msg("post published")
	return &result, nil
}

// SendDirectMessage resolves the target if only a handle was given, ensures a
// conversation with it, and sends one chat message.
func (c *Client) SendDirectMessage(ctx context.Context, creds model.AccountCredentials, target model.Target, text string) (*DMResult, error) {
	sess, err := c.login(ctx, creds)
	if err != nil {
		return nil, err
	}

	did := target.DID
	handle := target.Handle
	if did == "" {
		if handle == "" {
			return nil, normalizeError("sending DM",
				&requestError{Message: "missing target handle for DM"})
		}
		did, err = c.resolveHandle(ctx, sess, handle)
		if err != nil {
			return nil, err
		}
	}

	convoID, err := c.ensureConversation(ctx, sess, did)
	if err != nil {
		return nil, err
	}

	var out struct {
		ID string `json:"id"`
	}
	err = c.xrpc.procedure(ctx, "chat.bsky.convo.sendMessage", map[string]any{
		"convoId": convoID,
		"message": map[string]any{
			"$type": "chat.bsky.convo.defs#messageInput",
			"text":  text,
		},
	}, &out, callOpts{accessJwt: sess.AccessJwt, proxy: chatProxy})
	if err != nil {
		return nil, normalizeError("sending DM to "+handle, err)
	}

	log.Info().Str("handle", creds.Handle).Str("target", handle).Str("messageId", out.ID).Msg("dm sent")
	return &DMResult{
		ConvoID:      convoID,
		MessageID:    out.ID,
		TargetDID:    did,
		TargetHandle: handle,
	}, nil
}

func (c *Client) ensureConversation(ctx context.Context, sess *session, did string) (string, error) {
	params := url.Values{"members": {did}}
	var out struct {
		Convo struct {
			ID string `json:"id"`
		} `json:"convo"`
	}
	err := c.xrpc.query(ctx, "chat.bsky.convo.getConvoForMembers", params, &out,
		callOpts{accessJwt: sess.AccessJwt, proxy: chatProxy})
	if err != nil {
		return "", normalizeError("fetching DM conversation for "+did, err)
	}
	if out.Convo.ID == "" {
		return "", normalizeError("fetching DM conversation for "+did,
			&requestError{Message: "convo not found: the target may not allow DMs"})
	}
	return out.Convo.ID, nil
}

// FollowUser follows the given handle using account credentials when
// supplied, otherwise the shared session.
func (c *Client) FollowUser(ctx context.Context, creds *model.AccountCredentials, handle string) (string, error) {
	var sess *session
	var err error
	if creds != nil {
		sess, err = c.login(ctx, *creds)
	} else {
		sess, err = c.sharedAgent(ctx)
	}
	if err != nil {
		return "", err
	}

	did, err := c.resolveHandle(ctx, sess, handle)
	if err != nil {
		return "", err
	}

	err = c.xrpc.procedure(ctx, "com.atproto.repo.createRecord", map[string]any{
		"repo":       sess.DID,
		"collection": "app.bsky.graph.follow",
		"record": map[string]any{
			"$type":     "app.bsky.graph.follow",
			"subject":   did,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil, callOpts{accessJwt: sess.AccessJwt})
	if err != nil {
		return "", normalizeError("following "+handle, err)
	}

	log.Info().Str("handle", handle).Str("did", did).Msg("followed user")
	return did, nil
}

// GetFollowers lists followers of the given handle.
func (c *Client) GetFollowers(ctx context.Context, creds *model.AccountCredentials, handle string, limit int) ([]Follower, error) {
	var sess *session
	var err error
	if creds != nil {
		sess, err = c.login(ctx, *creds)
	} else {
		sess, err = c.sharedAgent(ctx)
	}
	if err != nil {
		return nil, err
	}

	did, err := c.resolveHandle(ctx, sess, handle)
	if err != nil {
		return nil, err
	}

	params := url.Values{"actor": {did}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Followers []Follower `json:"followers"`
	}
	if err := c.xrpc.query(ctx, "app.bsky.graph.getFollowers", params, &out,
		callOpts{accessJwt: sess.AccessJwt}); err != nil {
		return nil, normalizeError("getting followers for "+handle, err)
	}
	return out.Followers, nil
}

// TestConnection verifies the account's credentials by logging in.
func (c *Client) TestConnection(ctx context.Context, creds model.AccountCredentials) error {
	_, err := c.login(ctx, creds)
	return err
}
