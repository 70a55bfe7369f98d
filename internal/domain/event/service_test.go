package event

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/velmuzhov/photosite/internal/domain/category"
	"github.com/velmuzhov/photosite/internal/domain/picture"
	"github.com/velmuzhov/photosite/internal/pkg/cache"
	"github.com/velmuzhov/photosite/internal/pkg/imaging"
	"github.com/velmuzhov/photosite/internal/pkg/storage"
)

// memRepo is an in-memory Repository honoring the same uniqueness rules
// and rollback semantics as the postgres one.
type memRepo struct {
	nextEventID int64
	nextPicID   int64
	idToName    map[int64]string
	nameToID    map[string]int64
	events      map[int64]*Event
	pics        map[int64]*picture.Picture
}

func newMemRepo() *memRepo {
	r := &memRepo{
		idToName: map[int64]string{},
		nameToID: map[string]int64{},
		events:   map[int64]*Event{},
		pics:     map[int64]*picture.Picture{},
	}
	for i, name := range []string{category.Wedding, category.Portrait, category.Family, category.Blog} {
		id := int64(i + 1)
		r.idToName[id] = name
		r.nameToID[name] = id
	}
	return r
}

func cloneEvent(e *Event) *Event {
	c := *e
	return &c
}

func clonePicture(p *picture.Picture) *picture.Picture {
	c := *p
	return &c
}

func (r *memRepo) findByPair(categoryName string, date time.Time) *Event {
	for _, ev := range r.events {
		if ev.CategoryName == categoryName && ev.Date.Equal(date) {
			return ev
		}
	}
	return nil
}

func (r *memRepo) GetByCategoryAndDate(ctx context.Context, categoryName string, date time.Time) (*Event, error) {
	if ev := r.findByPair(categoryName, date); ev != nil {
		return cloneEvent(ev), nil
	}
	return nil, nil
}

func (r *memRepo) ListByCategory(ctx context.Context, categoryName string, limit, offset int, activeOnly bool) (int, []*Event, error) {
	var matched []*Event
	for _, ev := range r.events {
		if ev.CategoryName != categoryName {
			continue
		}
		if activeOnly && !ev.Active {
			continue
		}
		matched = append(matched, cloneEvent(ev))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return total, matched, nil
}

func (r *memRepo) ListByCreated(ctx context.Context, limit, offset int) (int, []*Event, error) {
	var all []*Event
	for _, ev := range r.events {
		all = append(all, cloneEvent(ev))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Created.After(all[j].Created) })

	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return total, all, nil
}

func (r *memRepo) ListInactive(ctx context.Context) ([]*Event, error) {
	var inactive []*Event
	for _, ev := range r.events {
		if !ev.Active {
			inactive = append(inactive, cloneEvent(ev))
		}
	}
	return inactive, nil
}

func (r *memRepo) CreateWithPictures(ctx context.Context, ev *Event, pics []*picture.Picture, writeFiles func(context.Context) error) error {
	if r.findByPair(ev.CategoryName, ev.Date) != nil {
		return ErrDuplicateEvent
	}

	r.nextEventID++
	ev.ID = r.nextEventID
	ev.Created = time.Now().Add(time.Duration(r.nextEventID) * time.Millisecond)
	ev.Active = true
	for _, pic := range pics {
		r.nextPicID++
		pic.ID = r.nextPicID
		pic.EventID = ev.ID
		pic.Uploaded = time.Now()
	}

	if writeFiles != nil {
		if err := writeFiles(ctx); err != nil {
			return err
		}
	}

	r.events[ev.ID] = cloneEvent(ev)
	for _, pic := range pics {
		r.pics[pic.ID] = clonePicture(pic)
	}
	return nil
}

func (r *memRepo) AddPictures(ctx context.Context, eventID int64, pics []*picture.Picture, writeFiles func(context.Context) error) error {
	for _, pic := range pics {
		for _, stored := range r.pics {
			if stored.Path == pic.Path || (stored.EventID == eventID && stored.Name == pic.Name) {
				return ErrDuplicateFilenames
			}
		}
	}
	for _, pic := range pics {
		r.nextPicID++
		pic.ID = r.nextPicID
		pic.EventID = eventID
		pic.Uploaded = time.Now()
	}

	if writeFiles != nil {
		if err := writeFiles(ctx); err != nil {
			return err
		}
	}

	for _, pic := range pics {
		r.pics[pic.ID] = clonePicture(pic)
	}
	return nil
}

func (r *memRepo) UpdateBaseData(ctx context.Context, eventID, newCategoryID int64, newDate time.Time, newPathPrefix string, newCover sql.NullString) error {
	ev := r.events[eventID]
	if occupant := r.findByPair(r.idToName[newCategoryID], newDate); occupant != nil && occupant.ID != eventID {
		return ErrDuplicateEvent
	}
	ev.CategoryID = newCategoryID
	ev.CategoryName = r.idToName[newCategoryID]
	ev.Date = newDate
	ev.Cover = newCover
	for _, pic := range r.pics {
		if pic.EventID == eventID {
			pic.Path = newPathPrefix + pic.Name
		}
	}
	return nil
}

func (r *memRepo) UpdateDescription(ctx context.Context, eventID int64, description sql.NullString) error {
	r.events[eventID].Description = description
	return nil
}

func (r *memRepo) UpdateCover(ctx context.Context, eventID int64, cover sql.NullString) error {
	r.events[eventID].Cover = cover
	return nil
}

func (r *memRepo) ToggleActive(ctx context.Context, eventID int64) (bool, error) {
	ev := r.events[eventID]
	ev.Active = !ev.Active
	return ev.Active, nil
}

func (r *memRepo) Delete(ctx context.Context, eventID int64) error {
	for id, pic := range r.pics {
		if pic.EventID == eventID {
			delete(r.pics, id)
		}
	}
	delete(r.events, eventID)
	return nil
}

func (r *memRepo) DeletePicturesByPaths(ctx context.Context, paths []string) ([]*picture.Picture, error) {
	byPath := map[string]*picture.Picture{}
	for _, pic := range r.pics {
		byPath[pic.Path] = pic
	}
	for _, path := range paths {
		if byPath[path] == nil {
			return nil, &PictureNotFoundError{Path: path}
		}
	}

	var deleted []*picture.Picture
	for _, path := range paths {
		pic := byPath[path]
		deleted = append(deleted, clonePicture(pic))
		delete(r.pics, pic.ID)
	}
	return deleted, nil
}

// memCategories serves the fixed category set backed by the same ids as
// the event repo.
type memCategories struct {
	repo *memRepo
}

func (c *memCategories) GetByName(ctx context.Context, name string) (*category.Category, error) {
	id, ok := c.repo.nameToID[name]
	if !ok {
		return nil, nil
	}
	return &category.Category{ID: id, Name: name}, nil
}

func (c *memCategories) List(ctx context.Context) ([]*category.Category, error) {
	var cats []*category.Category
	for id, name := range c.repo.idToName {
		cats = append(cats, &category.Category{ID: id, Name: name})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].ID < cats[j].ID })
	return cats, nil
}

type memPictures struct {
	repo *memRepo
}

func (p *memPictures) ListAll(ctx context.Context) ([]*picture.Picture, error) {
	var pics []*picture.Picture
	for _, pic := range p.repo.pics {
		pics = append(pics, clonePicture(pic))
	}
	sort.Slice(pics, func(i, j int) bool { return pics[i].ID < pics[j].ID })
	return pics, nil
}

func (p *memPictures) ListByEvent(ctx context.Context, eventID int64) ([]*picture.Picture, error) {
	var pics []*picture.Picture
	for _, pic := range p.repo.pics {
		if pic.EventID == eventID {
			pics = append(pics, clonePicture(pic))
		}
	}
	sort.Slice(pics, func(i, j int) bool { return pics[i].Name < pics[j].Name })
	return pics, nil
}

func (p *memPictures) NamesByEvent(ctx context.Context, eventID int64) (map[string]bool, error) {
	names := map[string]bool{}
	for _, pic := range p.repo.pics {
		if pic.EventID == eventID {
			names[pic.Name] = true
		}
	}
	return names, nil
}

func newTestService(t *testing.T) (*Service, *memRepo, *storage.LocalStore) {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	repo := newMemRepo()
	svc := NewService(
		repo,
		&memCategories{repo: repo},
		&memPictures{repo: repo},
		store,
		imaging.NewProcessor(imaging.Config{Width: 30, Height: 40, Quality: 85}),
		cache.New(nil, "test", time.Minute),
		10,
	)
	return svc, repo, store
}

func jpegFixture(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 3), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func upload(name string, data []byte) UploadFile {
	return UploadFile{Name: name, Reader: bytes.NewReader(data)}
}

func TestUploadCreatesEventAndFiles(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	cover := upload("10.jpg", img)
	resp, err := svc.Upload(ctx, "wedding", "2024-05-28", "warm evening light",
		[]UploadFile{upload("3.jpg", img), upload("1.jpg", img), upload("2.jpg", img)}, &cover)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if len(resp.Added) != 3 {
		t.Fatalf("Added = %v, want 3 names", resp.Added)
	}

	ev, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false)
	if err != nil {
		t.Fatalf("GetWithPictures: %v", err)
	}
	wantOrder := []string{"1.jpg", "2.jpg", "3.jpg"}
	if len(ev.Pictures) != 3 {
		t.Fatalf("got %d pictures, want 3", len(ev.Pictures))
	}
	for i, pic := range ev.Pictures {
		if pic.Name != wantOrder[i] {
			t.Errorf("picture %d = %q, want %q", i, pic.Name, wantOrder[i])
		}
		if pic.Path != "wedding/2024-05-28/"+wantOrder[i] {
			t.Errorf("picture path = %q", pic.Path)
		}
		if !store.Exists("images/" + pic.Path) {
			t.Errorf("original missing for %s", pic.Path)
		}
		if !store.Exists("thumbnails/" + pic.Path) {
			t.Errorf("thumbnail missing for %s", pic.Path)
		}
	}
	if ev.Cover == nil || *ev.Cover != "wedding/2024-05-28/10.jpg" {
		t.Errorf("cover = %v", ev.Cover)
	}
	if !store.Exists("event_covers/wedding/2024-05-28/10.jpg") {
		t.Error("cover file missing")
	}
	if ev.Description == nil || *ev.Description != "warm evening light" {
		t.Errorf("description = %v", ev.Description)
	}
	if !ev.Active {
		t.Error("new event should be active")
	}
}

func TestUploadRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	tests := []struct {
		name     string
		category string
		date     string
		files    []UploadFile
		want     error
	}{
		{"month out of range", "wedding", "2023-13-01", []UploadFile{upload("1.jpg", img)}, ErrInvalidDateFormat},
		{"unknown category", "landscapes", "2024-05-28", []UploadFile{upload("1.jpg", img)}, ErrInvalidCategory},
		{"no files", "wedding", "2024-05-28", nil, ErrNoFiles},
		{"letters in name", "wedding", "2024-05-28", []UploadFile{upload("cat.jpg", img)}, ErrInvalidFilenames},
		{"png extension", "wedding", "2024-05-28", []UploadFile{upload("1.png", img)}, ErrInvalidFilenames},
		{"duplicate names", "wedding", "2024-05-28", []UploadFile{upload("1.jpg", img), upload("1.jpg", img)}, ErrDuplicateFilenames},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.category, tt.date, "", tt.files, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Upload error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("rejected uploads must not create the event, got %v", err)
	}
}

func TestUploadToOccupiedPairConflicts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "",
		[]UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}

	_, err = svc.Upload(ctx, "wedding", "2024-05-28", "",
		[]UploadFile{upload("2.jpg", img)}, nil)
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("error = %v, want ErrDuplicateEvent", err)
	}

	if len(repo.pics) != 1 {
		t.Errorf("got %d picture rows, want the first upload's 1", len(repo.pics))
	}

	ev, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false)
	if err != nil {
		t.Fatalf("GetWithPictures: %v", err)
	}
	if len(ev.Pictures) != 1 || ev.Pictures[0].Name != "1.jpg" {
		t.Errorf("pictures after rejected upload = %+v", ev.Pictures)
	}
}

func TestUploadCoverOnlyRejected(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	cover := upload("10.jpg", img)
	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "", nil, &cover)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("error = %v, want ErrNoFiles", err)
	}

	if _, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("event after rejected upload = %v, want ErrEventNotFound", err)
	}
	if store.Exists("event_covers/wedding/2024-05-28/10.jpg") {
		t.Error("cover file written despite the rejection")
	}
}

func TestAddToEventDropsStoredClashes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "portrait", "2024-03-10", "",
		[]UploadFile{upload("1.jpg", img), upload("2.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	resp, err := svc.AddToEvent(ctx, "portrait", "2024-03-10",
		[]UploadFile{upload("2.jpg", img), upload("3.jpg", img)})
	if err != nil {
		t.Fatalf("AddToEvent: %v", err)
	}
	if len(resp.Added) != 1 || resp.Added[0] != "3.jpg" {
		t.Fatalf("Added = %v, want [3.jpg]", resp.Added)
	}

	ev, err := svc.GetWithPictures(ctx, "portrait", "2024-03-10", false)
	if err != nil {
		t.Fatalf("GetWithPictures: %v", err)
	}
	if len(ev.Pictures) != 3 {
		t.Errorf("got %d pictures, want 3", len(ev.Pictures))
	}
}

func TestAddToEventRejectsInBatchRepeats(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "portrait", "2024-03-10", "",
		[]UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	_, err = svc.AddToEvent(ctx, "portrait", "2024-03-10",
		[]UploadFile{upload("2.jpg", img), upload("2.jpg", img)})
	if !errors.Is(err, ErrDuplicateFilenames) {
		t.Fatalf("error = %v, want ErrDuplicateFilenames", err)
	}

	if len(repo.pics) != 1 {
		t.Errorf("got %d picture rows, want 1", len(repo.pics))
	}
}

func TestAddToEventRequiresEvent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.AddToEvent(ctx, "portrait", "2024-03-10", []UploadFile{upload("1.jpg", img)})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("error = %v, want ErrEventNotFound", err)
	}
}

func TestDeletePicturesDeduplicatesRequest(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "family", "2024-07-01", "",
		[]UploadFile{upload("1.jpg", img), upload("2.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	path := "family/2024-07-01/1.jpg"
	if err := svc.DeletePictures(ctx, []string{path, path}); err != nil {
		t.Fatalf("DeletePictures with a repeated path: %v", err)
	}

	if len(repo.pics) != 1 {
		t.Errorf("got %d rows left, want 1", len(repo.pics))
	}
	if store.Exists("images/" + path) {
		t.Error("original still on disk")
	}
	if store.Exists("thumbnails/" + path) {
		t.Error("thumbnail still on disk")
	}
}

func TestDeletePicturesUnknownPathAbortsAll(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "family", "2024-07-01", "",
		[]UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	err = svc.DeletePictures(ctx, []string{"family/2024-07-01/1.jpg", "family/2024-07-01/999.jpg"})
	var notFound *PictureNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want PictureNotFoundError", err)
	}
	if notFound.Path != "family/2024-07-01/999.jpg" {
		t.Errorf("failing path = %q", notFound.Path)
	}

	if len(repo.pics) != 1 {
		t.Error("matched row was deleted despite the abort")
	}
	if !store.Exists("images/family/2024-07-01/1.jpg") {
		t.Error("matched file was removed despite the abort")
	}
}

func TestToggleActiveTwiceRestores(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "blog", "2024-01-15", "", []UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ev, err := svc.ToggleActive(ctx, "blog", "2024-01-15")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if ev.Active {
		t.Error("first toggle should deactivate")
	}

	if _, err := svc.GetWithPictures(ctx, "blog", "2024-01-15", true); !errors.Is(err, ErrEventInactive) {
		t.Errorf("public read of inactive event = %v, want ErrEventInactive", err)
	}
	if _, err := svc.GetWithPictures(ctx, "blog", "2024-01-15", false); err != nil {
		t.Errorf("admin read of inactive event: %v", err)
	}

	ev, err = svc.ToggleActive(ctx, "blog", "2024-01-15")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !ev.Active {
		t.Error("second toggle should restore")
	}
}

func TestDeleteEventRemovesRowsAndTrees(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	cover := upload("9.jpg", img)
	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "",
		[]UploadFile{upload("1.jpg", img), upload("2.jpg", img)}, &cover)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, "wedding", "2024-05-28"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(repo.events) != 0 || len(repo.pics) != 0 {
		t.Error("rows survived the delete")
	}
	for _, dir := range []string{"images/wedding/2024-05-28", "thumbnails/wedding/2024-05-28", "event_covers/wedding/2024-05-28"} {
		if _, err := os.Stat(store.Abs(dir)); !os.IsNotExist(err) {
			t.Errorf("%s still exists", dir)
		}
	}

	if _, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("refetch = %v, want ErrEventNotFound", err)
	}
}

func TestUpdateBaseDataMovesTrees(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	cover := upload("5.jpg", img)
	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "",
		[]UploadFile{upload("1.jpg", img)}, &cover)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ev, err := svc.UpdateBaseData(ctx, "wedding", "2024-05-28",
		UpdateBaseDataRequest{NewCategory: "portrait", NewDate: "2024-06-01"})
	if err != nil {
		t.Fatalf("UpdateBaseData: %v", err)
	}
	if ev.Category != "portrait" || ev.Date != "2024-06-01" {
		t.Errorf("event moved to %s/%s", ev.Category, ev.Date)
	}
	if ev.Cover == nil || *ev.Cover != "portrait/2024-06-01/5.jpg" {
		t.Errorf("cover path = %v", ev.Cover)
	}

	moved, err := svc.GetWithPictures(ctx, "portrait", "2024-06-01", false)
	if err != nil {
		t.Fatalf("fetch after move: %v", err)
	}
	if moved.Pictures[0].Path != "portrait/2024-06-01/1.jpg" {
		t.Errorf("picture path = %q", moved.Pictures[0].Path)
	}

	if !store.Exists("images/portrait/2024-06-01/1.jpg") {
		t.Error("original not moved")
	}
	if !store.Exists("thumbnails/portrait/2024-06-01/1.jpg") {
		t.Error("thumbnail not moved")
	}
	if !store.Exists("event_covers/portrait/2024-06-01/5.jpg") {
		t.Error("cover not moved")
	}
	if _, err := os.Stat(store.Abs(filepath.Join("images", "wedding", "2024-05-28"))); !os.IsNotExist(err) {
		t.Error("old originals directory still exists")
	}

	if _, err := svc.GetWithPictures(ctx, "wedding", "2024-05-28", false); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("old coordinates = %v, want ErrEventNotFound", err)
	}
}

func TestUpdateBaseDataCollisionLeavesFiles(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "", []UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	_, err = svc.Upload(ctx, "wedding", "2024-06-01", "", []UploadFile{upload("2.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	_, err = svc.UpdateBaseData(ctx, "wedding", "2024-05-28", UpdateBaseDataRequest{NewDate: "2024-06-01"})
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("error = %v, want ErrDuplicateEvent", err)
	}

	if !store.Exists("images/wedding/2024-05-28/1.jpg") {
		t.Error("source files touched on a rejected move")
	}
	if !store.Exists("images/wedding/2024-06-01/2.jpg") {
		t.Error("target files touched on a rejected move")
	}
}

func TestUpdateBaseDataSameTargetIsNoop(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "wedding", "2024-05-28", "", []UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ev, err := svc.UpdateBaseData(ctx, "wedding", "2024-05-28", UpdateBaseDataRequest{})
	if err != nil {
		t.Fatalf("UpdateBaseData: %v", err)
	}
	if ev.Category != "wedding" || ev.Date != "2024-05-28" {
		t.Errorf("no-op changed coordinates to %s/%s", ev.Category, ev.Date)
	}
	if !store.Exists("images/wedding/2024-05-28/1.jpg") {
		t.Error("no-op touched files")
	}
}

func TestDescriptionLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "blog", "2024-02-02", "", []UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.UpdateDescription(ctx, "blog", "2024-02-02", "   "); !errors.Is(err, ErrEmptyDescription) {
		t.Errorf("blank description error = %v, want ErrEmptyDescription", err)
	}

	ev, err := svc.UpdateDescription(ctx, "blog", "2024-02-02", "studio session")
	if err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	if ev.Description == nil || *ev.Description != "studio session" {
		t.Errorf("description = %v", ev.Description)
	}

	ev, err = svc.DeleteDescription(ctx, "blog", "2024-02-02")
	if err != nil {
		t.Fatalf("DeleteDescription: %v", err)
	}
	if ev.Description != nil {
		t.Errorf("description after delete = %v", ev.Description)
	}
}

func TestCoverLifecycle(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	_, err := svc.Upload(ctx, "family", "2024-04-04", "", []UploadFile{upload("1.jpg", img)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	ev, err := svc.UpdateCover(ctx, "family", "2024-04-04", upload("7.jpg", img))
	if err != nil {
		t.Fatalf("UpdateCover: %v", err)
	}
	if ev.Cover == nil || *ev.Cover != "family/2024-04-04/7.jpg" {
		t.Errorf("cover = %v", ev.Cover)
	}

	ev, err = svc.UpdateCover(ctx, "family", "2024-04-04", upload("8.jpg", img))
	if err != nil {
		t.Fatalf("replace cover: %v", err)
	}
	if store.Exists("event_covers/family/2024-04-04/7.jpg") {
		t.Error("old cover file survived replacement")
	}
	if !store.Exists("event_covers/family/2024-04-04/8.jpg") {
		t.Error("new cover file missing")
	}

	ev, err = svc.DeleteCover(ctx, "family", "2024-04-04")
	if err != nil {
		t.Fatalf("DeleteCover: %v", err)
	}
	if ev.Cover != nil {
		t.Errorf("cover after delete = %v", ev.Cover)
	}
	if store.Exists("event_covers/family/2024-04-04/8.jpg") {
		t.Error("cover file survived delete")
	}
}

func TestListByCategoryPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	img := jpegFixture(t)

	for _, date := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		if _, err := svc.Upload(ctx, "wedding", date, "", []UploadFile{upload("1.jpg", img)}, nil); err != nil {
			t.Fatalf("Upload %s: %v", date, err)
		}
	}

	page, err := svc.ListByCategory(ctx, "wedding", 1, 2, true)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if page.Total != 3 {
		t.Errorf("Total = %d, want 3", page.Total)
	}
	if len(page.Events) != 2 {
		t.Fatalf("page 1 has %d events, want 2", len(page.Events))
	}
	if page.Events[0].Date != "2024-03-01" || page.Events[1].Date != "2024-02-01" {
		t.Errorf("page 1 dates = %s, %s; want newest first", page.Events[0].Date, page.Events[1].Date)
	}

	page, err = svc.ListByCategory(ctx, "wedding", 2, 2, true)
	if err != nil {
		t.Fatalf("ListByCategory page 2: %v", err)
	}
	if len(page.Events) != 1 || page.Events[0].Date != "2024-01-01" {
		t.Errorf("page 2 events = %+v", page.Events)
	}

	if _, err := svc.ListByCategory(ctx, "landscapes", 1, 2, true); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("unknown category error = %v, want ErrInvalidCategory", err)
	}
}
