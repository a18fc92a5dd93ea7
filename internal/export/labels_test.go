package export

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/gapfinder/internal/geom"
	"github.com/piwi3910/gapfinder/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestProject(t)); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFileWritten(t, path)
}

func TestExportLabels_NoResult(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "empty.pdf"), model.NewProject())
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestExportLabels_NothingUsable(t *testing.T) {
	proj := buildTestProject(t)
	proj.Settings.MinWidth = 10000

	if err := ExportLabels(filepath.Join(t.TempDir(), "none.pdf"), proj); err == nil {
		t.Fatal("expected error when no free rectangle is usable")
	}
}

func TestExportLabels_ManyLabels(t *testing.T) {
	proj := model.NewProject()
	rects := make([]geom.Rect, 0, 70)
	for i := 0; i < 70; i++ {
		rects = append(rects, geom.MustRect(float64(i), 0, 1, 10))
	}
	result := model.NewResult(rects, model.PassStats{Maximal: len(rects)})
	proj.Result = &result

	path := filepath.Join(t.TempDir(), "many_labels.pdf")
	if err := ExportLabels(path, proj); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFileWritten(t, path)
}

func TestCollectFreeSpaceInfos(t *testing.T) {
	result := model.NewResult([]geom.Rect{
		geom.MustRect(0, 0, 10, 4),
		geom.MustRect(6, 0, 4, 10),
	}, model.PassStats{})

	infos := CollectFreeSpaceInfos(result)
	if len(infos) != 2 {
		t.Fatalf("expected 2 infos, got %d", len(infos))
	}
	if infos[1].ID != result.Free[1].ID || infos[1].Left != 6 || infos[1].Height != 10 {
		t.Errorf("unexpected info %+v", infos[1])
	}
}

func TestFreeSpaceInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(FreeSpaceInfo{ID: "abc", Left: 1, Top: 2, Width: 3, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"abc","left":1,"top":2,"width":3,"height":4}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestEncodeQR(t *testing.T) {
	png, err := encodeQR(FreeSpaceInfo{ID: "abc", Width: 3, Height: 4}, qrcode.Medium)
	if err != nil {
		t.Fatalf("encodeQR failed: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("expected PNG data")
	}
}

func TestEncodeQR_TooLarge(t *testing.T) {
	infos := make([]FreeSpaceInfo, 200)
	_, err := encodeQR(infos, qrcode.Low)
	if !errors.Is(err, ErrTooLargeForQR) {
		t.Fatalf("expected ErrTooLargeForQR, got %v", err)
	}
}
