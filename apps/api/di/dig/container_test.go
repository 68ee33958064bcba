package dig_container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	echoapi "github.com/trezcool/tuition/apps/api/echo"
	"github.com/trezcool/tuition/core"
	"github.com/trezcool/tuition/services/suggest"
	"github.com/trezcool/tuition/storage"
	"github.com/trezcool/tuition/testutil"
)

func TestNew(t *testing.T) {
	c := New(core.NewTestConfig)

	err := c.Invoke(func(server *echoapi.Server, repos *storage.Repositories, suggester core.Suggester) {
		defer func() { assert.NoError(t, repos.Close()) }()
		assert.IsType(t, suggest.CannedSuggester{}, suggester)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/prices", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}

func Test_newSuggester(t *testing.T) {
	defer func() { newGeminiFunc = suggest.NewGeminiSuggester }()

	conf := core.NewTestConfig()
	conf.Gemini.APIKey = "key"
	gemini := new(suggest.GeminiSuggester)

	tests := []struct {
		name      string
		err       error
		want      core.Suggester
		wantWarns int
	}{
		{name: "gemini", want: gemini},
		{name: "client failure", err: errors.New("boom"), want: suggest.CannedSuggester{}, wantWarns: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newGeminiFunc = func(context.Context, *core.Config, core.Logger, ...option.ClientOption) (*suggest.GeminiSuggester, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return gemini, nil
			}
			logger := testutil.NewLogger()
			assert.Equal(t, tt.want, newSuggester(conf, logger))
			assert.Equal(t, tt.wantWarns, logger.Count("warn"))
		})
	}
}

type closingSuggester struct {
	suggest.CannedSuggester
	closed int
}

func (s *closingSuggester) Close() error {
	s.closed++
	return nil
}

func TestCloseSuggester(t *testing.T) {
	assert.NoError(t, CloseSuggester(suggest.CannedSuggester{}))
	assert.NoError(t, CloseSuggester(new(suggest.GeminiSuggester)))

	s := new(closingSuggester)
	require.NoError(t, CloseSuggester(s))
	assert.Equal(t, 1, s.closed)
}
