//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"estate_hub/internal/adapters/artifacts"
	server "estate_hub/internal/adapters/http_server"
	redisad "estate_hub/internal/adapters/redis"
	"estate_hub/internal/app"
	"estate_hub/internal/domain"
	"estate_hub/internal/similarity"
	mysqlrepo "estate_hub/internal/storage/mysql"
)

// ---------- helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=$PWD/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func writeArtifacts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sim := ",Alpha,Bravo,Cedar\nAlpha,1,0.5,0.2\nBravo,0.5,1,0.3\nCedar,0.2,0.3,1\n"
	files := map[string]string{
		"cosine_sim1.csv":       sim,
		"cosine_sim2.csv":       sim,
		"cosine_sim3.csv":       sim,
		"location_distance.csv": ",Sector 29\nAlpha,100\nBravo,2500\nCedar,900\n",
		"appartments.csv": "PropertyName,Link,Price,TopFacilities\n" +
			"Bravo,https://example.test/bravo,1.2 Cr,Gym\n" +
			"Cedar,https://example.test/cedar,95 L,Pool\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=estates"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/estates?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

// ---------- the test ----------

// Listings go artifact -> ingestor -> MySQL, and the API joins them back onto
// recommendations served from the artifact similarity matrices.
func TestHTTP_EndToEnd_RecommendationsFromMySQL(t *testing.T) {
	ctx := context.Background()
	dir := writeArtifacts(t)
	db := startMySQL(t)
	repo := mysqlrepo.New(db)

	src := artifacts.DirSource{Dir: dir}
	rc, err := src.Open(ctx, "appartments.csv")
	if err != nil {
		t.Fatal(err)
	}
	ls, err := artifacts.ParseListings("appartments.csv", rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	res, err := app.NewIngestionService(repo).IngestAll(ctx, ls, 2)
	if err != nil || res.OK != 2 {
		t.Fatalf("ingest: %+v %v", res, err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0, "e2e:")
	t.Cleanup(func() { _ = cache.Close() })

	loader := artifacts.NewLoader(src, artifacts.DefaultNames(), similarity.DefaultWeights())
	snaps := app.NewSnapshotProvider(func(ctx context.Context) (*app.Snapshot, error) {
		s, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		return &app.Snapshot{Store: s.Store, Listings: s.Listings, Version: s.Version}, nil
	})
	srv := server.New(server.DefaultOptions())
	srv.MountHandlers(&server.Handlers{
		Q:     app.NewQueryService(snaps, repo, cache, time.Minute),
		P:     app.NewPriceService(nil),
		Ready: snaps.Loaded,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/properties/Alpha/recommendations?top_n=5")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Recommendations []domain.Recommendation `json:"recommendations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	recs := body.Recommendations
	if len(recs) != 2 || recs[0].PropertyName != "Bravo" || recs[1].PropertyName != "Cedar" {
		t.Fatalf("unexpected ranking: %+v", recs)
	}
	if recs[0].Link == nil || !strings.HasSuffix(*recs[0].Link, "/bravo") || recs[0].Fields["TopFacilities"] != "Gym" {
		t.Fatalf("listing not joined from mysql: %+v", recs[0])
	}
	cached := false
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "e2e:rec:0.5,0.8,1@") && strings.HasSuffix(k, ":Alpha:5:0") {
			cached = true
		}
	}
	if !cached {
		t.Fatalf("recommendation not cached under a weights/version scope; keys=%v", mr.Keys())
	}
}
