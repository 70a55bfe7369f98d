package event

import (
	"context"
	"database/sql"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/velmuzhov/photosite/internal/domain/category"
	"github.com/velmuzhov/photosite/internal/domain/picture"
	"github.com/velmuzhov/photosite/internal/pkg/cache"
	"github.com/velmuzhov/photosite/internal/pkg/imaging"
	"github.com/velmuzhov/photosite/internal/pkg/storage"
)

// UploadFile is one incoming file from a multipart upload
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// Service is the consistency engine: every operation keeps the event and
// picture rows and the three on-disk trees describing the same state. The
// database commit is always the point of no return; file moves and removals
// after a commit are tolerant and logged rather than failed.
type Service struct {
	repo       Repository
	categories category.Repository
	pictures   picture.Repository
	store      *storage.LocalStore
	thumbs     *imaging.Processor
	cache      *cache.Cache
	pageLimit  int
}

// NewService creates new event service
func NewService(
	repo Repository,
	categories category.Repository,
	pictures picture.Repository,
	store *storage.LocalStore,
	thumbs *imaging.Processor,
	responseCache *cache.Cache,
	pageLimit int,
) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		pictures:   pictures,
		store:      store,
		thumbs:     thumbs,
		cache:      responseCache,
		pageLimit:  pageLimit,
	}
}

// treePath joins a tree name with a relative picture path
func treePath(tree, rel string) string {
	return tree + "/" + rel
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// resolveCategory looks a category up by name, mapping absence to
// ErrInvalidCategory.
func (s *Service) resolveCategory(ctx context.Context, name string) (*category.Category, error) {
	cat, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrInvalidCategory
	}
	return cat, nil
}

// findEvent resolves (category, date) to an existing event, mapping absence
// to ErrEventNotFound.
func (s *Service) findEvent(ctx context.Context, categoryName, dateStr string) (*Event, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	ev, err := s.repo.GetByCategoryAndDate(ctx, categoryName, date)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrEventNotFound
	}
	return ev, nil
}

// writePicture stores the original and derives its thumbnail. Both trees
// use the same relative path.
func (s *Service) writePicture(ctx context.Context, rel string, reader io.Reader) error {
	original := treePath(ImagesTree, rel)
	if err := s.store.Save(ctx, original, reader); err != nil {
		return err
	}
	return s.thumbs.MakeThumbnail(s.store.Abs(original), s.store.Abs(treePath(ThumbnailsTree, rel)))
}

// Upload implements POST /pictures/: it creates the event at a fresh
// (category, date) pair. An event exists only because pictures were
// uploaded to it, so the batch must not be empty, and an occupied pair is
// a conflict; appending goes through AddToEvent.
func (s *Service) Upload(ctx context.Context, categoryName, dateStr, description string, files []UploadFile, cover *UploadFile) (*UploadResponse, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	cat, err := s.resolveCategory(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	if !storage.ValidFilenames(names) {
		return nil, ErrInvalidFilenames
	}
	if cover != nil && !storage.ValidFilename(cover.Name) {
		return nil, ErrInvalidFilenames
	}

	ev, err := s.repo.GetByCategoryAndDate(ctx, categoryName, date)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		return nil, ErrDuplicateEvent
	}

	resp, err := s.createWithPictures(ctx, cat, date, description, files, cover)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return resp, nil
}

// AddToEvent appends pictures to an event that must already exist
func (s *Service) AddToEvent(ctx context.Context, categoryName, dateStr string, files []UploadFile) (*UploadResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	if !storage.ValidFilenames(names) {
		return nil, ErrInvalidFilenames
	}

	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}

	resp, err := s.addPictures(ctx, ev, files)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return resp, nil
}

func (s *Service) createWithPictures(ctx context.Context, cat *category.Category, date time.Time, description string, files []UploadFile, cover *UploadFile) (*UploadResponse, error) {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return nil, ErrDuplicateFilenames
		}
		seen[f.Name] = true
	}

	dir := RelDir(cat.Name, date)
	ev := &Event{
		Date:         date,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Description:  nullString(description),
	}
	if cover != nil {
		ev.Cover = nullString(dir + "/" + cover.Name)
	}

	pics := make([]*picture.Picture, 0, len(files))
	for _, f := range files {
		pics = append(pics, &picture.Picture{Name: f.Name, Path: dir + "/" + f.Name})
	}

	// The event directories are new, so cleanup after a failed write is
	// removing them wholesale.
	writeFiles := func(ctx context.Context) error {
		err := s.writeUploadFiles(ctx, dir, files, cover)
		if err != nil {
			for _, tree := range []string{ImagesTree, ThumbnailsTree, CoversTree} {
				if rmErr := s.store.RemoveTree(ctx, treePath(tree, dir)); rmErr != nil {
					log.Error().Err(rmErr).Str("dir", dir).Str("tree", tree).Msg("Failed to clean up after aborted upload")
				}
			}
		}
		return err
	}

	if err := s.repo.CreateWithPictures(ctx, ev, pics, writeFiles); err != nil {
		return nil, err
	}

	added := make([]string, 0, len(files))
	for _, f := range files {
		added = append(added, f.Name)
	}
	return &UploadResponse{Added: added}, nil
}

func (s *Service) addPictures(ctx context.Context, ev *Event, files []UploadFile) (*UploadResponse, error) {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return nil, ErrDuplicateFilenames
		}
		seen[f.Name] = true
	}

	stored, err := s.pictures.NamesByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	// Names already present on the event are dropped silently: the stored
	// file wins.
	dir := ev.Dir()
	kept := make([]UploadFile, 0, len(files))
	for _, f := range files {
		if stored[f.Name] {
			continue
		}
		kept = append(kept, f)
	}

	pics := make([]*picture.Picture, 0, len(kept))
	for _, f := range kept {
		pics = append(pics, &picture.Picture{Name: f.Name, Path: dir + "/" + f.Name})
	}

	if len(kept) > 0 {
		// Cleanup after a failed write removes only the files this call
		// put down; the event's directories stay.
		writeFiles := func(ctx context.Context) error {
			err := s.writeUploadFiles(ctx, dir, kept, nil)
			if err != nil {
				for _, f := range kept {
					rel := dir + "/" + f.Name
					s.removeTolerant(ctx, treePath(ImagesTree, rel))
					s.removeTolerant(ctx, treePath(ThumbnailsTree, rel))
				}
			}
			return err
		}
		if err := s.repo.AddPictures(ctx, ev.ID, pics, writeFiles); err != nil {
			return nil, err
		}
	}

	added := make([]string, 0, len(kept))
	for _, f := range kept {
		added = append(added, f.Name)
	}
	return &UploadResponse{Added: added}, nil
}

func (s *Service) writeUploadFiles(ctx context.Context, dir string, files []UploadFile, cover *UploadFile) error {
	for _, f := range files {
		if err := s.writePicture(ctx, dir+"/"+f.Name, f.Reader); err != nil {
			return err
		}
	}
	if cover != nil {
		if err := s.store.Save(ctx, treePath(CoversTree, dir+"/"+cover.Name), cover.Reader); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) removeTolerant(ctx context.Context, rel string) {
	if err := s.store.Remove(ctx, rel); err != nil {
		log.Warn().Err(err).Str("path", rel).Msg("Failed to remove file")
	}
}

func (s *Service) replaceCover(ctx context.Context, ev *Event, cover *UploadFile) error {
	if ev.Cover.Valid {
		s.removeTolerant(ctx, treePath(CoversTree, ev.Cover.String))
	}
	rel := ev.Dir() + "/" + cover.Name
	if err := s.store.Save(ctx, treePath(CoversTree, rel), cover.Reader); err != nil {
		return err
	}
	ev.Cover = nullString(rel)
	return s.repo.UpdateCover(ctx, ev.ID, ev.Cover)
}

// UpdateBaseData moves an event to a new (category, date) pair: one tx
// rewrites the event row and every picture path, then the three trees are
// moved on disk. Identical coordinates are a no-op.
func (s *Service) UpdateBaseData(ctx context.Context, categoryName, dateStr string, req UpdateBaseDataRequest) (*EventResponse, error) {
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}

	newCategoryName := req.NewCategory
	if newCategoryName == "" {
		newCategoryName = ev.CategoryName
	}
	newDate := ev.Date
	if req.NewDate != "" {
		newDate, err = ParseDate(req.NewDate)
		if err != nil {
			return nil, err
		}
	}

	if newCategoryName == ev.CategoryName && newDate.Equal(ev.Date) {
		resp := EventResponseFromEntity(ev)
		return &resp, nil
	}

	newCat, err := s.resolveCategory(ctx, newCategoryName)
	if err != nil {
		return nil, err
	}
	occupant, err := s.repo.GetByCategoryAndDate(ctx, newCat.Name, newDate)
	if err != nil {
		return nil, err
	}
	if occupant != nil {
		return nil, ErrDuplicateEvent
	}

	oldDir := ev.Dir()
	newDir := RelDir(newCat.Name, newDate)
	newCover := ev.Cover
	if ev.Cover.Valid {
		name := ev.Cover.String[strings.LastIndex(ev.Cover.String, "/")+1:]
		newCover = nullString(newDir + "/" + name)
	}

	err = s.repo.UpdateBaseData(ctx, ev.ID, newCat.ID, newDate, newDir+"/", newCover)
	if err != nil {
		return nil, err
	}

	// Rows committed; the trees follow. A move failure leaves stale copies
	// for the operator to reconcile, never a half-updated database.
	for _, tree := range []string{ImagesTree, ThumbnailsTree, CoversTree} {
		if err := s.store.MoveTree(ctx, treePath(tree, oldDir), treePath(tree, newDir), true); err != nil {
			log.Error().Err(err).Str("tree", tree).Str("from", oldDir).Str("to", newDir).Msg("Failed to move event files")
		}
	}

	s.cache.Invalidate(ctx)

	ev.CategoryID = newCat.ID
	ev.CategoryName = newCat.Name
	ev.Date = newDate
	ev.Cover = newCover
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// UpdateDescription replaces the event description
func (s *Service) UpdateDescription(ctx context.Context, categoryName, dateStr, description string) (*EventResponse, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	ev.Description = nullString(description)
	if err := s.repo.UpdateDescription(ctx, ev.ID, ev.Description); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// DeleteDescription clears the event description
func (s *Service) DeleteDescription(ctx context.Context, categoryName, dateStr string) (*EventResponse, error) {
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	ev.Description = sql.NullString{}
	if err := s.repo.UpdateDescription(ctx, ev.ID, ev.Description); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// UpdateCover replaces the event cover file and its stored path
func (s *Service) UpdateCover(ctx context.Context, categoryName, dateStr string, cover UploadFile) (*EventResponse, error) {
	if !storage.ValidFilename(cover.Name) {
		return nil, ErrInvalidFilenames
	}
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	if err := s.replaceCover(ctx, ev, &cover); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// DeleteCover clears the cover, unlinking the file tolerantly
func (s *Service) DeleteCover(ctx context.Context, categoryName, dateStr string) (*EventResponse, error) {
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	if ev.Cover.Valid {
		s.removeTolerant(ctx, treePath(CoversTree, ev.Cover.String))
	}
	ev.Cover = sql.NullString{}
	if err := s.repo.UpdateCover(ctx, ev.ID, ev.Cover); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// ToggleActive inverts the event's visibility flag
func (s *Service) ToggleActive(ctx context.Context, categoryName, dateStr string) (*EventResponse, error) {
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.ToggleActive(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	ev.Active = active
	resp := EventResponseFromEntity(ev)
	return &resp, nil
}

// Delete removes the event: rows first in one tx, then the three directory
// trees. Directory removal failures are logged, not surfaced; the rows are
// the source of truth and they are already gone.
func (s *Service) Delete(ctx context.Context, categoryName, dateStr string) error {
	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ev.ID); err != nil {
		return err
	}

	dir := ev.Dir()
	for _, tree := range []string{ImagesTree, ThumbnailsTree, CoversTree} {
		if err := s.store.RemoveTree(ctx, treePath(tree, dir)); err != nil {
			log.Error().Err(err).Str("tree", tree).Str("dir", dir).Msg("Failed to remove event files")
		}
	}

	s.cache.Invalidate(ctx)
	return nil
}

// DeletePictures removes pictures by path across events. The request is
// deduplicated; any path with no matching row rejects the whole call before
// a single row is deleted. After the commit the originals and thumbnails
// are unlinked, tolerating files already gone.
func (s *Service) DeletePictures(ctx context.Context, paths []string) error {
	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}

	deleted, err := s.repo.DeletePicturesByPaths(ctx, unique)
	if err != nil {
		return err
	}

	for _, pic := range deleted {
		if err := s.store.Remove(ctx, treePath(ImagesTree, pic.Path)); err != nil {
			return err
		}
		if err := s.store.Remove(ctx, treePath(ThumbnailsTree, pic.Path)); err != nil {
			return err
		}
	}

	s.cache.Invalidate(ctx)
	return nil
}

// GetWithPictures is the single-event read. With activeOnly an inactive
// event answers ErrEventInactive so the public surface can 410 it.
func (s *Service) GetWithPictures(ctx context.Context, categoryName, dateStr string, activeOnly bool) (*EventWithPictures, error) {
	var key string
	if activeOnly {
		key = s.cache.Key("event", categoryName, dateStr)
		var cached EventWithPictures
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	ev, err := s.findEvent(ctx, categoryName, dateStr)
	if err != nil {
		return nil, err
	}
	if activeOnly && !ev.Active {
		return nil, ErrEventInactive
	}

	pics, err := s.pictures.ListByEvent(ctx, ev.ID)
	if err != nil {
		return nil, err
	}

	resp := &EventWithPictures{
		EventResponse: EventResponseFromEntity(ev),
		Pictures:      make([]PictureResponse, 0, len(pics)),
	}
	for _, pic := range pics {
		resp.Pictures = append(resp.Pictures, PictureResponseFromEntity(pic))
	}

	if activeOnly {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

// ListByCategory pages a category's events, newest date first
func (s *Service) ListByCategory(ctx context.Context, categoryName string, page, limit int, activeOnly bool) (*EventPage, error) {
	if _, err := s.resolveCategory(ctx, categoryName); err != nil {
		return nil, err
	}
	page, limit = s.normalizePage(page, limit)

	var key string
	if activeOnly {
		key = s.cache.Key("events", categoryName, pageKey(page, limit))
		var cached EventPage
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	total, events, err := s.repo.ListByCategory(ctx, categoryName, limit, limit*(page-1), activeOnly)
	if err != nil {
		return nil, err
	}

	resp := newEventPage(total, page, limit, events)
	if activeOnly {
		s.cache.Set(ctx, key, resp)
	}
	return resp, nil
}

// ListByCreated pages all events by creation time, newest first
func (s *Service) ListByCreated(ctx context.Context, page, limit int) (*EventPage, error) {
	page, limit = s.normalizePage(page, limit)
	total, events, err := s.repo.ListByCreated(ctx, limit, limit*(page-1))
	if err != nil {
		return nil, err
	}
	return newEventPage(total, page, limit, events), nil
}

// ListInactive returns every hidden event
func (s *Service) ListInactive(ctx context.Context) ([]EventResponse, error) {
	events, err := s.repo.ListInactive(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, EventResponseFromEntity(ev))
	}
	return resp, nil
}

// ListAllPictures returns every stored picture row
func (s *Service) ListAllPictures(ctx context.Context) ([]PictureResponse, error) {
	pics, err := s.pictures.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]PictureResponse, 0, len(pics))
	for _, pic := range pics {
		resp = append(resp, PictureResponseFromEntity(pic))
	}
	return resp, nil
}

// ListCategories returns the fixed category set
func (s *Service) ListCategories(ctx context.Context) ([]*category.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pageLimit
	}
	return page, limit
}

func pageKey(page, limit int) string {
	return "p" + strconv.Itoa(page) + ":l" + strconv.Itoa(limit)
}

func newEventPage(total, page, limit int, events []*Event) *EventPage {
	resp := &EventPage{
		Total:  total,
		Page:   page,
		Limit:  limit,
		Events: make([]EventResponse, 0, len(events)),
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, EventResponseFromEntity(ev))
	}
	return resp
}
