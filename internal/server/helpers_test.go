package server

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

// multipartAvatar writes an avatar form into body and returns its content type
func multipartAvatar(t *testing.T, body *bytes.Buffer, data []byte) string {
	t.Helper()
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}
