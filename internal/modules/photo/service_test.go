package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	photos    []*Photo
	createErr error
	// stores limits which store ids exist; a nil map means every id exists.
	stores map[string]bool
}

func (r *fakeRepo) Create(ctx context.Context, p *Photo) error {
	if r.createErr != nil {
		return r.createErr
	}
	p.CreatedAt = time.Now()
	// Prepend: newest first, matching the repository ordering contract.
	r.photos = append([]*Photo{p}, r.photos...)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Photo, error) {
	for _, p := range r.photos {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) ListByStore(ctx context.Context, storeID string) ([]*Photo, error) {
	var out []*Photo
	for _, p := range r.photos {
		if p.StoreID.String() == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	kept := r.photos[:0]
	for _, p := range r.photos {
		if p.ID.String() != id {
			kept = append(kept, p)
		}
	}
	r.photos = kept
	return nil
}

func (r *fakeRepo) StoreExists(ctx context.Context, storeID string) (bool, error) {
	if r.stores == nil {
		return true, nil
	}
	return r.stores[storeID], nil
}

func (r *fakeRepo) DeleteByStore(ctx context.Context, storeID string) error {
	kept := r.photos[:0]
	for _, p := range r.photos {
		if p.StoreID.String() != storeID {
			kept = append(kept, p)
		}
	}
	r.photos = kept
	return nil
}

type fakeBlobs struct {
	objects   map[string][]byte
	putErr    error
	removeErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (b *fakeBlobs) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if b.putErr != nil {
		return 0, b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	b.objects[key] = data
	return int64(len(data)), nil
}

func (b *fakeBlobs) Remove(ctx context.Context, keys ...string) error {
	if b.removeErr != nil {
		return b.removeErr
	}
	for _, key := range keys {
		delete(b.objects, key)
	}
	return nil
}

func (b *fakeBlobs) PublicURL(key string) string { return "/media/" + key }

func (b *fakeBlobs) keysUnder(prefix string) []string {
	var keys []string
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

func TestUploadStoresBlobAndRow(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	p, err := svc.Upload(context.Background(), storeID, "dock.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)

	keyPattern := regexp.MustCompile("^" + regexp.QuoteMeta(storeID) + `/\d+_dock\.jpg$`)
	assert.Regexp(t, keyPattern, p.StoragePath)
	assert.Equal(t, "/media/"+p.StoragePath, p.URL)
	assert.Equal(t, storeID, p.StoreID.String())
	assert.NotEqual(t, uuid.Nil, p.ID)

	assert.Equal(t, []byte("jpegbytes"), blobs.objects[p.StoragePath])
	require.Len(t, repo.photos, 1)
	assert.Equal(t, p.ID, repo.photos[0].ID)
}

func TestUploadSanitizesFileName(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	p, err := svc.Upload(context.Background(), storeID, "my photo (1).jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p.StoragePath, "_my_photo__1_.jpg"), p.StoragePath)
}

func TestUploadCanonicalizesStorePrefix(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	sid := uuid.New()

	// The parser accepts uppercase uuids; the blob key must still use the
	// canonical lowercase prefix the deletion cascade lists by.
	p, err := svc.Upload(context.Background(), strings.ToUpper(sid.String()), "dock.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.StoragePath, sid.String()+"/"), p.StoragePath)
	assert.Len(t, blobs.keysUnder(sid.String()+"/"), 1)
}

func TestUploadRejectsBadStoreID(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeBlobs())

	_, err := svc.Upload(context.Background(), "not-a-uuid", "a.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrStoreNotFound)
}

func TestUploadUnknownStoreWritesNoBlob(t *testing.T) {
	repo := &fakeRepo{stores: map[string]bool{}}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	// A syntactically valid id for a store that never existed must be
	// rejected before any blob is written: no cascade would ever sweep
	// a blob under that prefix.
	_, err := svc.Upload(context.Background(), storeID, "a.jpg", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrStoreNotFound)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, repo.photos)
}

func TestUploadBlobFailureLeavesNoRow(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	blobs.putErr = fmt.Errorf("disk full")
	svc := NewService(repo, blobs)

	_, err := svc.Upload(context.Background(), uuid.New().String(), "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Empty(t, repo.photos)
}

func TestUploadRowFailureLeavesOrphanedBlobOnly(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("insert failed")}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	_, err := svc.Upload(context.Background(), storeID, "a.jpg", strings.NewReader("x"))
	require.Error(t, err)
	// Blob-first order: the failed insert leaves the blob behind. The store
	// deletion cascade sweeps it up by prefix.
	assert.Len(t, blobs.keysUnder(storeID+"/"), 1)
	assert.Empty(t, repo.photos)
}

func TestDeletePhotoRemovesBlobThenRow(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	p, err := svc.Upload(context.Background(), storeID, "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePhoto(context.Background(), p.ID.String()))
	assert.Empty(t, blobs.keysUnder(storeID+"/"))
	assert.Empty(t, repo.photos)
}

func TestDeletePhotoWithMissingBlobStillDeletesRow(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	sid := uuid.New()

	// A row whose blob is already gone: Remove is idempotent, so the
	// delete must still take the row out.
	p := &Photo{
		ID:          uuid.New(),
		StoreID:     sid,
		URL:         "/media/" + sid.String() + "/1700000000000_gone.jpg",
		StoragePath: sid.String() + "/1700000000000_gone.jpg",
	}
	require.NoError(t, repo.Create(context.Background(), p))

	require.NoError(t, svc.DeletePhoto(context.Background(), p.ID.String()))
	assert.Empty(t, repo.photos)
}

func TestDeletePhotoKeepsRowWhenBlobRemovalFails(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)

	p, err := svc.Upload(context.Background(), uuid.New().String(), "a.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	blobs.removeErr = errors.New("backend unavailable")
	err = svc.DeletePhoto(context.Background(), p.ID.String())
	require.Error(t, err)
	require.Len(t, repo.photos, 1)
}

func TestDeletePhotoUnknownID(t *testing.T) {
	svc := NewService(&fakeRepo{}, newFakeBlobs())

	err := svc.DeletePhoto(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPhotosNewestFirst(t *testing.T) {
	repo := &fakeRepo{}
	blobs := newFakeBlobs()
	svc := NewService(repo, blobs)
	storeID := uuid.New().String()

	first, err := svc.Upload(context.Background(), storeID, "first.jpg", strings.NewReader("1"))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), storeID, "second.jpg", strings.NewReader("2"))
	require.NoError(t, err)

	photos, err := svc.ListPhotos(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, second.ID, photos[0].ID)
	assert.Equal(t, first.ID, photos[1].ID)
}
