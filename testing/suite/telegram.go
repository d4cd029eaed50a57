package suite

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// ParseRequestBody reads the multipart form of a Bot API request into a map. The body can only
// be read once.
func ParseRequestBody(t *testing.T, request *http.Request) map[string]string {
	t.Helper()

	reader, err := request.MultipartReader()
	require.NoError(t, err)

	form := map[string]string{}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		value, err := io.ReadAll(part)
		require.NoError(t, err)
		require.NoError(t, part.Close())

		form[part.FormName()] = string(value)
	}

	return form
}
