package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Konovalexx/hh-parser-2/internal/model"
)

// ── fakes ──────────────────────────────────────────────────────────────────

type fakeRow struct {
	id  int
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int)) = r.id
	return nil
}

type fakeResults struct{ err error }

func (fakeResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }
func (fakeResults) Query() (pgx.Rows, error) { return nil, nil }
func (fakeResults) QueryRow() pgx.Row { return fakeRow{} }
func (r fakeResults) Close() error { return r.err }

type fakeTx struct {
	companyID int
	rowErr    error
	batchErr  error

	calls     []string // "company" / "batch", in call order
	companies []string
	batch     *pgx.Batch
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, "company")
	if !strings.Contains(sql, "INSERT INTO company") {
		return fakeRow{err: errors.New("unexpected query: " + sql)}
	}
	f.companies = append(f.companies, args[0].(string))
	return fakeRow{id: f.companyID, err: f.rowErr}
}

func (f *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.calls = append(f.calls, "batch")
	f.batch = b
	return fakeResults{err: f.batchErr}
}

func vacancy(name string, salary model.Optional[model.SalaryRange]) model.Vacancy {
	return model.Vacancy{
		Name:         name,
		PublishedAt:  "2024-03-01T10:15:00+0300",
		AlternateURL: "https://hh.ru/vacancy/" + name,
		Salary:       salary,
	}
}

func salary(from, to model.Optional[int]) model.Optional[model.SalaryRange] {
	return model.Some(model.SalaryRange{From: from, To: to})
}

type stored struct {
	companyID int
	title     string
	url       string
	from, to  int
}

func queued(t *testing.T, b *pgx.Batch) []stored {
	t.Helper()
	if b == nil {
		return nil
	}
	out := make([]stored, 0, b.Len())
	for _, q := range b.QueuedQueries {
		if !strings.Contains(q.SQL, "INSERT INTO vacancy") {
			t.Fatalf("unexpected batched statement: %s", q.SQL)
		}
		out = append(out, stored{
			companyID: q.Arguments[0].(int),
			title:     q.Arguments[1].(string),
			url:       q.Arguments[3].(string),
			from:      q.Arguments[4].(int),
			to:        q.Arguments[5].(int),
		})
	}
	return out
}

// ── salary normalisation through the writer ───────────────────────────────

func TestSaveCompany_SalaryShapes(t *testing.T) {
	vacancies := []model.Vacancy{
		vacancy("both", salary(model.Some(100), model.Some(200))),
		vacancy("from", salary(model.Some(100), model.NullOf[int]())),
		vacancy("to", salary(model.NullOf[int](), model.Some(200))),
		vacancy("none", model.NullOf[model.SalaryRange]()),
		vacancy("absent", model.Optional[model.SalaryRange]{}),
		vacancy("empty", salary(model.NullOf[int](), model.NullOf[int]())),
	}

	cases := []struct {
		policy      EmptySalaryPolicy
		want        []stored
		wantSkipped int
	}{
		{
			policy: EmptySalaryZero,
			want: []stored{
				{7, "both", "https://hh.ru/vacancy/both", 100, 200},
				{7, "from", "https://hh.ru/vacancy/from", 100, 0},
				{7, "to", "https://hh.ru/vacancy/to", 0, 200},
				{7, "none", "https://hh.ru/vacancy/none", 0, 0},
				{7, "absent", "https://hh.ru/vacancy/absent", 0, 0},
				{7, "empty", "https://hh.ru/vacancy/empty", 0, 0},
			},
		},
		{
			policy: EmptySalarySkip,
			want: []stored{
				{7, "both", "https://hh.ru/vacancy/both", 100, 200},
				{7, "from", "https://hh.ru/vacancy/from", 100, 0},
				{7, "to", "https://hh.ru/vacancy/to", 0, 200},
				{7, "none", "https://hh.ru/vacancy/none", 0, 0},
				{7, "absent", "https://hh.ru/vacancy/absent", 0, 0},
			},
			wantSkipped: 1,
		},
	}

	for _, c := range cases {
		tx := &fakeTx{companyID: 7}
		res, err := saveCompany(context.Background(), tx, "Ozon", vacancies, c.policy)
		if err != nil {
			t.Fatalf("policy %d: saveCompany: %v", c.policy, err)
		}
		got := queued(t, tx.batch)
		if len(got) != len(c.want) {
			t.Fatalf("policy %d: %d rows queued, want %d", c.policy, len(got), len(c.want))
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("policy %d row %d = %+v, want %+v", c.policy, i, got[i], c.want[i])
			}
		}
		if res.CompanyID != 7 || res.Inserted != len(c.want) || res.Skipped != c.wantSkipped {
			t.Errorf("policy %d: result = %+v", c.policy, res)
		}
	}
}

func TestSaveCompany_CompanyInsertedFirst(t *testing.T) {
	tx := &fakeTx{companyID: 3}
	vs := []model.Vacancy{
		vacancy("a", model.Optional[model.SalaryRange]{}),
		vacancy("b", model.Optional[model.SalaryRange]{}),
		vacancy("c", model.Optional[model.SalaryRange]{}),
	}

	res, err := saveCompany(context.Background(), tx, "Skyeng", vs, EmptySalaryZero)
	if err != nil {
		t.Fatalf("saveCompany: %v", err)
	}
	if strings.Join(tx.calls, ",") != "company,batch" {
		t.Errorf("call order = %v, want company then batch", tx.calls)
	}
	if len(tx.companies) != 1 || tx.companies[0] != "Skyeng" {
		t.Errorf("companies inserted = %v", tx.companies)
	}
	rows := queued(t, tx.batch)
	if len(rows) != 3 {
		t.Fatalf("%d vacancy rows, want 3", len(rows))
	}
	for i, r := range rows {
		if r.companyID != 3 {
			t.Errorf("row %d references company %d, want 3", i, r.companyID)
		}
		if r.title != vs[i].Name {
			t.Errorf("row %d title = %q, want %q (input order)", i, r.title, vs[i].Name)
		}
	}
	if res.Inserted != 3 {
		t.Errorf("Inserted = %d, want 3", res.Inserted)
	}
}

func TestSaveCompany_PublishDate(t *testing.T) {
	tx := &fakeTx{companyID: 1}
	vs := []model.Vacancy{
		{Name: "dated", PublishedAt: "2024-03-01T01:00:00+0300"},
		{Name: "undated"},
	}
	if _, err := saveCompany(context.Background(), tx, "X", vs, EmptySalaryZero); err != nil {
		t.Fatalf("saveCompany: %v", err)
	}

	dated := tx.batch.QueuedQueries[0].Arguments[2].(pgtype.Date)
	if !dated.Valid || dated.Time.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("dated publish_date = %+v, want 2024-03-01", dated)
	}
	undated := tx.batch.QueuedQueries[1].Arguments[2].(pgtype.Date)
	if undated.Valid {
		t.Errorf("undated publish_date = %+v, want NULL", undated)
	}
}

func TestSaveCompany_NoVacanciesSkipsBatch(t *testing.T) {
	tx := &fakeTx{companyID: 1}
	res, err := saveCompany(context.Background(), tx, "Empty", nil, EmptySalaryZero)
	if err != nil {
		t.Fatalf("saveCompany: %v", err)
	}
	if tx.batch != nil {
		t.Error("batch sent for a company without vacancies")
	}
	if res.CompanyID != 1 || res.Inserted != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestSaveCompany_Errors(t *testing.T) {
	boom := errors.New("boom")
	vs := []model.Vacancy{vacancy("a", model.Optional[model.SalaryRange]{})}

	t.Run("company insert", func(t *testing.T) {
		tx := &fakeTx{rowErr: boom}
		_, err := saveCompany(context.Background(), tx, "X", vs, EmptySalaryZero)
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped boom", err)
		}
		if tx.batch != nil {
			t.Error("vacancies sent after company insert failed")
		}
	})

	t.Run("vacancy batch", func(t *testing.T) {
		tx := &fakeTx{companyID: 1, batchErr: boom}
		res, err := saveCompany(context.Background(), tx, "X", vs, EmptySalaryZero)
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped boom", err)
		}
		if res != (SaveResult{}) {
			t.Errorf("result = %+v, want zero on failure", res)
		}
	})
}

func TestParseEmptySalaryPolicy(t *testing.T) {
	cases := map[string]EmptySalaryPolicy{"zero": EmptySalaryZero, "": EmptySalaryZero, "skip": EmptySalarySkip}
	for in, want := range cases {
		got, err := ParseEmptySalaryPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseEmptySalaryPolicy(%q) = (%d, %v), want %d", in, got, err, want)
		}
	}
	if _, err := ParseEmptySalaryPolicy("drop"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
