package dhttp_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/dworld/dhttp"
	"github.com/datawire/dworld/dlog"
)

func newRequest(ctx context.Context, t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestMockTransportDefault(t *testing.T) {
	ctx := dlog.NewTestContext(t, true)
	transport := &dhttp.MockTransport{}
	client := dhttp.MockSession(transport)()

	resp, err := client.Do(newRequest(ctx, t, "https://github.com"))
	if resp != nil {
		resp.Body.Close()
	}

	var dhttpErr *dhttp.Error
	require.ErrorAs(t, err, &dhttpErr)
	assert.Equal(t, dhttp.BadServerResponse, dhttpErr.Code)
	assert.False(t, dhttpErr.Timeout())
	assert.Len(t, transport.Requests(), 1)
}

func TestMockTransportCannedResponses(t *testing.T) {
	type canned func(*http.Request, []byte, http.Header) (*http.Response, error)
	testcases := map[string]struct {
		Canned   canned
		Expected int
	}{
		"successful": {Canned: dhttp.Successful, Expected: http.StatusOK},
		"http403":    {Canned: dhttp.HTTP403, Expected: http.StatusForbidden},
		"http404":    {Canned: dhttp.HTTP404, Expected: http.StatusNotFound},
		"http500":    {Canned: dhttp.HTTP500, Expected: http.StatusInternalServerError},
	}
	for tcname, tc := range testcases {
		tc := tc
		t.Run(tcname, func(t *testing.T) {
			ctx := dlog.NewTestContext(t, true)
			transport := &dhttp.MockTransport{
				Handler: func(req *http.Request) (*http.Response, error) {
					return tc.Canned(req, []byte("payload"), http.Header{"X-Mock": {"yes"}})
				},
			}
			resp, err := dhttp.MockSession(transport)().Do(newRequest(ctx, t, "https://github.com/datawire"))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, resp.StatusCode)
			assert.Equal(t, "payload", string(body))
			assert.Equal(t, "yes", resp.Header.Get("X-Mock"))
			assert.Equal(t, "/datawire", resp.Request.URL.Path)
		})
	}
}

func TestMockTransportChangingHandler(t *testing.T) {
	ctx := dlog.NewTestContext(t, true)
	transport := &dhttp.MockTransport{}
	client := dhttp.MockSession(transport)()

	for _, code := range []int{http.StatusOK, http.StatusTeapot, http.StatusNotFound} {
		code := code
		transport.SetHandler(func(req *http.Request) (*http.Response, error) {
			return dhttp.Custom(req, code, nil, nil)
		})
		resp, err := client.Do(newRequest(ctx, t, "https://example.com"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, code, resp.StatusCode)
	}
	assert.Len(t, transport.Requests(), 3)
}

func TestMockTransportHandlerPanics(t *testing.T) {
	transport := &dhttp.MockTransport{
		Handler: func(*http.Request) (*http.Response, error) {
			panic("handler exploded")
		},
	}
	resp, err := transport.RoundTrip(newRequest(context.Background(), t, "https://example.com"))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PANIC: handler exploded")
}

func TestMockTransportNilResponse(t *testing.T) {
	transport := &dhttp.MockTransport{
		Handler: func(*http.Request) (*http.Response, error) { return nil, nil },
	}
	_, err := transport.RoundTrip(newRequest(context.Background(), t, "https://example.com"))
	assert.Error(t, err)
}

func TestMockRequester(t *testing.T) {
	ctx := dlog.NewTestContext(t, true)

	_, err := dhttp.MockRequester(nil)(newRequest(ctx, t, "https://github.com"))
	var dhttpErr *dhttp.Error
	require.ErrorAs(t, err, &dhttpErr)
	assert.Equal(t, "dhttp: bad server response", dhttpErr.Error())

	requester := dhttp.MockRequester(func(req *http.Request) (*http.Response, error) {
		return dhttp.HTTP404(req, nil, nil)
	})
	resp, err := requester(newRequest(ctx, t, "https://github.com"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "404 Not Found", resp.Status)

	requester = dhttp.MockRequester(func(*http.Request) (*http.Response, error) {
		return dhttp.Failure(dhttp.TimedOut)
	})
	_, err = requester(newRequest(ctx, t, "https://github.com"))
	require.ErrorAs(t, err, &dhttpErr)
	assert.True(t, dhttpErr.Timeout())
}
