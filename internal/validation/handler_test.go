package validation

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"licensio/internal/audit"
	"licensio/internal/credential"
	id "licensio/pkg/domain"
	"licensio/pkg/secrets"
	"licensio/pkg/testutil"
)

type ValidationHandlerSuite struct {
	suite.Suite

	recorder *fakeRecorder
	router   chi.Router
	cred     credential.Credential
	secret   string
}

func (s *ValidationHandlerSuite) SetupSuite() {
	s.secret = "handler-secret"
	hash, err := secrets.Hash(s.secret)
	s.Require().NoError(err)

	s.cred = credential.Credential{
		ID:         id.NewCredentialID(),
		KeyString:  "lk_handler",
		SecretHash: hash,
		OwnerID:    id.NewUserID(),
		ProductID:  id.NewProductID(),
		Status:     credential.StatusActive,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *ValidationHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := &fakeDirectory{
		credentials: map[string]credential.Credential{s.cred.KeyString: s.cred},
	}
	s.recorder = &fakeRecorder{}
	handler := NewHandler(NewService(directory, s.recorder, nil, logger), logger)

	s.router = chi.NewRouter()
	handler.RegisterPublic(s.router)
}

func (s *ValidationHandlerSuite) SetupSubTest() {
	s.SetupTest()
}

func TestValidationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ValidationHandlerSuite))
}

func (s *ValidationHandlerSuite) TestHandleValidate() {
	s.Run("allow response", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", map[string]string{
			"api_key": s.cred.KeyString,
			"secret":  s.secret,
			"domain":  "example.com",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal(true, (*body)["valid"])
		s.Equal(string(audit.CodeOK), (*body)["error_code"])
	})

	s.Run("deny is still a 200 with the deciding code", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", map[string]string{
			"api_key": "lk_unknown",
			"secret":  "whatever",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		s.Equal(false, (*body)["valid"])
		s.Equal(string(audit.CodeNotFound), (*body)["error_code"])
	})

	s.Run("every request produces exactly one event", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", map[string]string{
			"api_key": s.cred.KeyString,
			"secret":  "wrong",
		})
		testutil.DoRequest(s.router, req)

		s.Require().Len(s.recorder.events, 1)
		s.Equal(audit.CodeBadSignature, s.recorder.events[0].ErrorCode)
	})

	s.Run("missing api_key is invalid_input", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", map[string]string{
			"secret": "whatever",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "invalid_input")
		s.Empty(s.recorder.events)
	})

	s.Run("unknown JSON fields are rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/validate", map[string]string{
			"api_key":    s.cred.KeyString,
			"secret":     s.secret,
			"surprising": "field",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "bad_request")
	})
}
