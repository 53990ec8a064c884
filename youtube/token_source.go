package youtube

import (
	"github.com/mvdbrink/pubtube/model"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
)

// persistingTokenSource wraps an oauth2.TokenSource and reports a refreshed
// token through notify, so a refresh that happens mid-upload outlives the
// attempt. A notify failure is logged, not fatal: the fresh token is still
// served to the transport, it just won't be persisted.
type persistingTokenSource struct {
	src    oauth2.TokenSource
	curr   *oauth2.Token
	notify func(model.Token) error
	logger *slog.Logger
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	if s.curr == nil || s.curr.AccessToken != tok.AccessToken {
		s.curr = tok
		if s.notify != nil {
			if err := s.notify(fromOAuth2(tok)); err != nil {
				s.logger.Error("failed to persist refreshed token", err)
			}
		}
	}

	return s.curr, nil
}

func toOAuth2(t model.Token) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

func fromOAuth2(t *oauth2.Token) model.Token {
	return model.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry,
	}
}
