package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	_ "golang.org/x/image/webp"
)

type fakeStats struct {
	mu      sync.Mutex
	reports []models.BatchReport
	err     error
}

func (f *fakeStats) RecordBatch(_ context.Context, report models.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return f.err
}

type fakeEvents struct {
	events []*models.BatchEvent
}

func (f *fakeEvents) PublishBatchEvent(_ context.Context, event *models.BatchEvent) error {
	f.events = append(f.events, event)
	return nil
}

func sampleImage(t *testing.T, name string, shade uint8) models.UploadedFile {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 24, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 24; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: shade, G: uint8(x * 10), B: uint8(y * 15), A: 200})
		}
	}

	format, err := imaging.FormatFromFilename(name)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return models.UploadedFile{Name: name, Content: buf.Bytes()}
}

func newService(t *testing.T, policy batch.Policy, workers int, stats StatsRecorder, events EventPublisher) *BatchService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	scheduler := batch.NewScheduler(processor.NewConverter(nil), batch.Options{
		Workers:     workers,
		FileTimeout: 10 * time.Second,
		Policy:      policy,
	}, logger)

	svc := NewBatchService(processor.NewValidator(nil), scheduler, stats, events, logger)
	svc.now = func() time.Time { return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local) }
	return svc
}

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = content
	}
	return entries
}

func names(entries map[string][]byte) []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestConvert_ArchivesEveryValidFile(t *testing.T) {
	stats := &fakeStats{}
	events := &fakeEvents{}
	svc := newService(t, batch.PolicyAbort, 4, stats, events)

	files := []models.UploadedFile{
		sampleImage(t, "sunset.png", 10),
		sampleImage(t, "portrait.jpg", 20),
		{Name: "notes.txt", Content: []byte("not an image")},
		sampleImage(t, "logo.gif", 30),
	}

	resp, err := svc.Convert(context.Background(), "batch-1", files, " WebP ")
	require.NoError(t, err)

	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, "converted_images_20240102030405.zip", resp.Filename)
	assert.Equal(t, "application/zip", resp.ContentType)
	assert.Equal(t, 3, resp.Entries)
	assert.Empty(t, resp.Skipped)

	entries := readArchive(t, resp.Data)
	assert.Equal(t, []string{"logo.webp", "portrait.webp", "sunset.webp"}, names(entries))
	for name, content := range entries {
		img, format, err := image.Decode(bytes.NewReader(content))
		require.NoError(t, err, name)
		assert.Equal(t, "webp", format)
		assert.Equal(t, 24, img.Bounds().Dx())
	}

	require.Len(t, stats.reports, 1)
	assert.Equal(t, models.StatusCompleted, stats.reports[0].Status)
	assert.Equal(t, 3, stats.reports[0].Files)
	assert.Equal(t, 3, stats.reports[0].Converted)
	require.Len(t, events.events, 1)
	assert.Equal(t, "webp", events.events[0].Format)
	assert.Empty(t, events.events[0].Error)
}

func TestConvert_CollidingStems(t *testing.T) {
	svc := newService(t, batch.PolicyAbort, 2, nil, nil)

	files := []models.UploadedFile{sampleImage(t, "cat.png", 1), sampleImage(t, "cat.jpg", 2)}
	resp, err := svc.Convert(context.Background(), "batch-2", files, "webp")
	require.NoError(t, err)

	assert.Equal(t, []string{"cat.webp", "cat_1.webp"}, names(readArchive(t, resp.Data)))
}

func TestConvert_NoValidInput(t *testing.T) {
	stats := &fakeStats{}
	svc := newService(t, batch.PolicyAbort, 2, stats, nil)

	_, err := svc.Convert(context.Background(), "batch-3", []models.UploadedFile{{Name: "readme.md"}}, "png")
	assert.ErrorIs(t, err, processor.ErrNoValidInput)

	_, err = svc.Convert(context.Background(), "batch-4", nil, "png")
	assert.ErrorIs(t, err, processor.ErrNoValidInput)

	require.Len(t, stats.reports, 2)
	assert.Equal(t, models.StatusRejected, stats.reports[0].Status)
}

func TestConvert_UnsupportedFormat(t *testing.T) {
	svc := newService(t, batch.PolicyAbort, 2, nil, nil)

	_, err := svc.Convert(context.Background(), "batch-5", []models.UploadedFile{sampleImage(t, "a.png", 1)}, "heic")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestConvert_AbortOnCorruptFile(t *testing.T) {
	events := &fakeEvents{}
	svc := newService(t, batch.PolicyAbort, 4, nil, events)

	files := []models.UploadedFile{
		sampleImage(t, "a.png", 1),
		{Name: "broken.jpg", Content: []byte("definitely not a jpeg")},
		sampleImage(t, "c.png", 3),
	}

	resp, err := svc.Convert(context.Background(), "batch-6", files, "png")
	assert.Nil(t, resp)

	var batchErr *batch.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, "broken.jpg", batchErr.File)
	assert.ErrorIs(t, err, processor.ErrDecode)

	require.Len(t, events.events, 1)
	assert.Equal(t, models.StatusFailed, events.events[0].Status)
	assert.Contains(t, events.events[0].Error, "broken.jpg")
}

func TestConvert_SkipOnCorruptFile(t *testing.T) {
	stats := &fakeStats{}
	svc := newService(t, batch.PolicySkip, 4, stats, nil)

	files := []models.UploadedFile{
		sampleImage(t, "a.png", 1),
		{Name: "broken.jpg", Content: []byte("definitely not a jpeg")},
		sampleImage(t, "c.bmp", 3),
	}

	resp, err := svc.Convert(context.Background(), "batch-7", files, "jpeg")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpeg", "c.jpeg"}, names(readArchive(t, resp.Data)))
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "broken.jpg", resp.Skipped[0].Name)

	require.Len(t, stats.reports, 1)
	assert.Equal(t, models.StatusPartial, stats.reports[0].Status)
	assert.Equal(t, 1, stats.reports[0].Skipped)
}

func TestConvert_ParallelismDoesNotChangeOutput(t *testing.T) {
	files := []models.UploadedFile{
		sampleImage(t, "one.png", 11),
		sampleImage(t, "two.jpg", 22),
		sampleImage(t, "three.gif", 33),
		sampleImage(t, "four.bmp", 44),
		sampleImage(t, "five.tiff", 55),
		sampleImage(t, "one.tif", 66),
	}

	serial, err := newService(t, batch.PolicyAbort, 1, nil, nil).Convert(context.Background(), "serial", files, "tiff")
	require.NoError(t, err)
	parallel, err := newService(t, batch.PolicyAbort, 8, nil, nil).Convert(context.Background(), "parallel", files, "tiff")
	require.NoError(t, err)

	assert.Equal(t, readArchive(t, serial.Data), readArchive(t, parallel.Data))
}

func TestConvert_StatsFailureDoesNotFailRequest(t *testing.T) {
	svc := newService(t, batch.PolicyAbort, 2, &fakeStats{err: errors.New("redis down")}, nil)

	resp, err := svc.Convert(context.Background(), "batch-8", []models.UploadedFile{sampleImage(t, "a.png", 1)}, "gif")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Entries)
}
