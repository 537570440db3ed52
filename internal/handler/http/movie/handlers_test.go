package movie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"laostream/internal/domain/entity"
	movieUC "laostream/internal/usecase/movie"
)

const testJWTSecret = "test-secret-key-with-at-least-32-characters"

type stubRepo struct {
	movies map[int64]*entity.Movie
	nextID int64
}

func newStubRepo(movies ...*entity.Movie) *stubRepo {
	s := &stubRepo{movies: make(map[int64]*entity.Movie), nextID: 1}
	for _, m := range movies {
		s.movies[m.ID] = m
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
	return s
}

func (s *stubRepo) Get(_ context.Context, id int64) (*entity.Movie, error) {
	return s.movies[id], nil
}

func (s *stubRepo) List(_ context.Context, limit, offset int) ([]*entity.Movie, error) {
	var out []*entity.Movie
	for id := int64(1); id < s.nextID && len(out) < limit; id++ {
		if m, ok := s.movies[id]; ok {
			if offset > 0 {
				offset--
				continue
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) Search(_ context.Context, keyword string) ([]*entity.Movie, error) {
	var out []*entity.Movie
	for id := int64(1); id < s.nextID; id++ {
		m, ok := s.movies[id]
		if ok && strings.Contains(strings.ToLower(m.Title), strings.ToLower(keyword)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubRepo) Create(_ context.Context, m *entity.Movie) error {
	m.ID = s.nextID
	s.nextID++
	s.movies[m.ID] = m
	return nil
}

func (s *stubRepo) Update(_ context.Context, m *entity.Movie) error {
	s.movies[m.ID] = m
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id int64) error {
	delete(s.movies, id)
	return nil
}

func catalogue() []*entity.Movie {
	return []*entity.Movie{
		{ID: 1, Title: "The River", RentalPriceLAK: 50000, RentalDays: 3, Published: true},
		{ID: 2, Title: "Open Skies", RentalPriceLAK: 0, RentalDays: 7, Published: true},
		{ID: 3, Title: "River Delta", RentalPriceLAK: 30000, RentalDays: 3, Published: false},
	}
}

func newTestMux(t *testing.T, movies ...*entity.Movie) *http.ServeMux {
	t.Helper()
	svc := &movieUC.Service{Repo: newStubRepo(movies...)}
	mux := http.NewServeMux()
	Register(mux, svc)
	return mux
}

func adminHeader(t *testing.T) http.Header {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "admin@example.com",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return http.Header{"Authorization": {"Bearer " + token}}
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestListMovies(t *testing.T) {
	mux := newTestMux(t, catalogue()...)

	rec := do(t, mux, http.MethodGet, "/movies", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var out []DTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("got %d movies, want 3", len(out))
	}

	rec = do(t, mux, http.MethodGet, "/movies?limit=1&offset=1", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0].ID != 2 {
		t.Errorf("paged result = %+v, want only movie 2", out)
	}
}

func TestSearchMovies(t *testing.T) {
	mux := newTestMux(t, catalogue()...)

	rec := do(t, mux, http.MethodGet, "/movies/search?q=river", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var out []DTO
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("got %d matches, want 2", len(out))
	}

	if rec := do(t, mux, http.MethodGet, "/movies/search", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing keyword: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetMovie(t *testing.T) {
	mux := newTestMux(t, catalogue()...)

	rec := do(t, mux, http.MethodGet, "/movies/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var dto DTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.Title != "The River" {
		t.Errorf("title = %q, want The River", dto.Title)
	}

	if rec := do(t, mux, http.MethodGet, "/movies/99", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown movie: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := do(t, mux, http.MethodGet, "/movies/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateMovie(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	mux := newTestMux(t)

	body := `{"title":"New Release","rental_price_lak":40000,"rental_days":3,"published":true}`
	rec := do(t, mux, http.MethodPost, "/movies", body, adminHeader(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var dto DTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.ID == 0 || dto.Title != "New Release" {
		t.Errorf("got %+v, want persisted movie", dto)
	}

	tests := []struct {
		name string
		body string
	}{
		{"no title or tmdb id", `{"rental_price_lak":40000}`},
		{"negative price", `{"title":"X","rental_price_lak":-1,"rental_days":3}`},
		{"zero rental days", `{"title":"X","rental_price_lak":0,"rental_days":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/movies", tt.body, adminHeader(t))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestUpdateMovie(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	mux := newTestMux(t, catalogue()...)

	rec := do(t, mux, http.MethodPut, "/movies/3", `{"published":true}`, adminHeader(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var dto DTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !dto.Published {
		t.Error("expected movie to be published")
	}
	if dto.Title != "River Delta" {
		t.Errorf("title = %q, want unchanged River Delta", dto.Title)
	}

	if rec := do(t, mux, http.MethodPut, "/movies/99", `{"published":true}`, adminHeader(t)); rec.Code != http.StatusNotFound {
		t.Errorf("unknown movie: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteMovie(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	mux := newTestMux(t, catalogue()...)

	rec := do(t, mux, http.MethodDelete, "/movies/1", "", adminHeader(t))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, mux, http.MethodGet, "/movies/1", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("deleted movie lookup: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := do(t, mux, http.MethodDelete, "/movies/1", "", adminHeader(t)); rec.Code != http.StatusNotFound {
		t.Errorf("double delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	mux := newTestMux(t, catalogue()...)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/movies"},
		{http.MethodPut, "/movies/1"},
		{http.MethodDelete, "/movies/1"},
	}
	for _, p := range paths {
		rec := do(t, mux, p.method, p.path, `{"title":"X","rental_days":1}`, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want %d", p.method, p.path, rec.Code, http.StatusUnauthorized)
		}
	}
}
