package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	resp, err := s.Upload(ctx, &UploadObject{
		FileName: "contractAddresses.json",
		Mime:     "application/json",
		Data:     []byte(`{"31337":["0x1"]}`),
	})
	require.NoError(t, err)
	require.Equal(t, "contractAddresses.json", resp.FileName)

	b, err := s.Download(ctx, "", "contractAddresses.json")
	require.NoError(t, err)
	require.Equal(t, `{"31337":["0x1"]}`, string(b))

	// Upload overwrites.
	_, err = s.Upload(ctx, &UploadObject{FileName: "contractAddresses.json", Data: []byte(`{}`)})
	require.NoError(t, err)

	b, err = s.Download(ctx, "", "contractAddresses.json")
	require.NoError(t, err)
	require.Equal(t, `{}`, string(b))
}

func TestLocalStorage_DownloadNotFound(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	_, err := s.Download(context.Background(), "", "abi.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_BulkUploadWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	resps, err := s.BulkUpload(ctx, []*UploadObject{
		{Prefix: "constants", FileName: "a.json", Data: []byte("a")},
		{Prefix: "constants", FileName: "b.json", Data: []byte("b")},
	})
	require.NoError(t, err)
	require.Len(t, resps, 2)
	require.Equal(t, "constants/b.json", resps[1].FileName)

	b, err := s.Download(ctx, "", "constants/a.json")
	require.NoError(t, err)
	require.Equal(t, "a", string(b))
}
