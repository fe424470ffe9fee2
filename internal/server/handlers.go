package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/Duddu64/economia/internal/chart"
	"github.com/Duddu64/economia/internal/dataset"
	"github.com/Duddu64/economia/internal/loader"
	"github.com/Duddu64/economia/internal/refresh"
	"github.com/Duddu64/economia/internal/store"
)

// DownloadFile is the name offered for the filtered CSV join.
const DownloadFile = "dados_filtrados_mercado_imobiliario.csv"

const ratesUnavailable = "Não foi possível carregar os dados de juros do Banco Central."

// filters are the sidebar selections carried in the query string.
type filters struct {
	from, to int
	hasFrom  bool
	hasTo    bool
	sectors  []dataset.Sector
	variant  *store.Variant // nil follows the files on disk
}

func parseFilters(q url.Values) (filters, error) {
	var f filters
	if v := q.Get("from"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid from %q", v)
		}
		f.from, f.hasFrom = n, true
	}
	if v := q.Get("to"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid to %q", v)
		}
		f.to, f.hasTo = n, true
	}
	for _, name := range q["setor"] {
		s, err := dataset.ParseSector(name)
		if err != nil {
			return f, err
		}
		if !slices.Contains(f.sectors, s) {
			f.sectors = append(f.sectors, s)
		}
	}
	if len(f.sectors) == 0 {
		f.sectors = dataset.Sectors
	}
	switch v := q.Get("variante"); v {
	case "":
	case store.Original.String(), store.Updated.String():
		variant := store.Original
		if v == store.Updated.String() {
			variant = store.Updated
		}
		f.variant = &variant
	default:
		return f, fmt.Errorf("invalid variante %q", v)
	}
	return f, nil
}

// state is the dashboard state of the request: the one on disk unless the
// query pins a variant.
func (s *Server) state(f filters) loader.DashboardState {
	st := s.loader.State()
	if f.variant != nil {
		st = st.With(*f.variant)
	}
	return st
}

// resolve fills the bounds the query left out with the range of d. A range
// selecting no year is kept as is and yields empty tables.
func (f filters) resolve(d loader.Dataset) dataset.YearRange {
	r, _ := d.Range()
	if f.hasFrom {
		r.Start = f.from
	}
	if f.hasTo {
		r.End = f.to
	}
	return r
}

func (f filters) query(r dataset.YearRange) string {
	q := url.Values{}
	q.Set("from", strconv.Itoa(r.Start))
	q.Set("to", strconv.Itoa(r.End))
	if len(f.sectors) != len(dataset.Sectors) {
		for _, s := range f.sectors {
			q.Add("setor", s.String())
		}
	}
	if f.variant != nil {
		q.Set("variante", f.variant.String())
	}
	return q.Encode()
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view := chart.Overview
	if name, ok := mux.Vars(r)["view"]; ok {
		v, err := chart.ParseView(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		view = v
	}
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := s.state(f)
	var (
		d        loader.Dataset
		rates    []dataset.InterestRateObservation
		ratesErr error
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		d, err = state.Load()
		return err
	})
	if view.NeedsRates() {
		g.Go(func() error {
			rates, ratesErr = s.rates.Series(ctx, s.series, s.history(s.now()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(w, err)
		return
	}

	rng := f.resolve(d)
	filtered := d.Filter(rng)
	page := chart.Build(view, chart.Input{
		Tables:  filtered.Sectors,
		FGTS:    filtered.FGTS,
		Rates:   dataset.FilterDates(rates, rng),
		Sectors: f.sectors,
	})
	if ratesErr != nil {
		s.log.Warn("interest series unavailable", zap.Error(ratesErr))
		page.Warnings = append(page.Warnings, ratesUnavailable)
	}
	if d.FellBack() {
		page.Warnings = append(page.Warnings, "Dados atualizados indisponíveis; exibindo os dados originais.")
	}
	page.Source = "Dados originais"
	if d.Variant == store.Updated {
		page.Source = "Dados atualizados via API"
	}

	query := f.query(rng)
	for _, v := range chart.Views {
		page.Nav = append(page.Nav, chart.Link{
			Label:  v.Title(),
			Href:   "/views/" + string(v) + "?" + query,
			Active: v == view,
		})
	}
	page.Actions = []chart.Link{
		{Label: "Baixar Dados Filtrados (CSV)", Href: "/api/download?" + query},
		{Label: "Atualizar Dados Online", Href: "/api/refresh", Method: "post"},
	}
	if s.loader.Store().Has(store.Updated) {
		page.Actions = append(page.Actions, chart.Link{Label: "Resetar para Dados Originais", Href: "/api/reset", Method: "post"})
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, page); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type refreshError struct {
	RunID string        `json:"run_id,omitempty"`
	Stage refresh.Stage `json:"etapa,omitempty"`
	Error string        `json:"erro"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.refresher.Run(r.Context())
	if err != nil {
		var f *refresh.Failure
		if !errors.As(err, &f) {
			s.fail(w, err)
			return
		}
		code := http.StatusInternalServerError
		if f.Network() || f.Stage == refresh.StageNormalize {
			code = http.StatusBadGateway
		}
		s.writeJSON(w, code, refreshError{RunID: f.RunID, Stage: f.Stage, Error: "Falha ao atualizar dados. Usando dados locais."})
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.refresher.Reset(); err != nil {
		s.fail(w, err)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"variante": store.Original.String()})
}

type dataResponse struct {
	Variant  string                            `json:"variante"`
	FellBack bool                              `json:"fallback"`
	Range    dataset.YearRange                 `json:"periodo"`
	Tables   map[string][]dataset.SectorRecord `json:"tabelas"`
	FGTS     []dataset.FGTSContribution        `json:"fgts"`
	Warnings []string                          `json:"avisos,omitempty"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := s.state(f).Load()
	if err != nil {
		s.fail(w, err)
		return
	}
	rng := f.resolve(d)
	filtered := d.Filter(rng)

	resp := dataResponse{
		Variant:  d.Variant.String(),
		FellBack: d.FellBack(),
		Range:    rng,
		Tables:   make(map[string][]dataset.SectorRecord, len(f.sectors)),
		FGTS:     filtered.FGTS,
	}
	for _, sec := range f.sectors {
		records := filtered.Sector(sec)
		if records == nil {
			records = []dataset.SectorRecord{}
		}
		resp.Tables[sec.String()] = records
	}
	for _, warn := range d.Warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d, err := s.state(f).Load()
	if err != nil {
		s.fail(w, err)
		return
	}
	filtered := d.Filter(f.resolve(d))

	var buf bytes.Buffer
	rows := store.Join(filtered.Sector(dataset.Construction), filtered.Sector(dataset.RealEstate))
	if err := store.EncodeJoin(&buf, rows); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFile+`"`)
	w.Write(buf.Bytes())
}

// fail answers with the status matching err. A missing dataset names the
// files that were looked for.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var missing *dataset.MissingDatasetError
	if errors.As(err, &missing) {
		s.log.Error("dataset not found", zap.Strings("files", missing.Files))
		http.Error(w, "Erro Crítico: arquivo de dados não encontrado: "+strings.Join(missing.Files, ", "), http.StatusServiceUnavailable)
		return
	}
	s.log.Error("request failed", zap.Error(err))
	http.Error(w, "Ocorreu um erro inesperado ao carregar os dados.", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("error writing response", zap.Error(err))
	}
}

// wantsHTML reports whether the request came from the dashboard form.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
