package web

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hauke96/sigolo/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"net/http"
	"scf/finder"
	"scf/geometry"
	ownIo "scf/io"
	"scf/matching"
	"scf/shape"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(message string, err error) ErrorResponse {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	return response
}

type ConstellationStore interface {
	Constellations(ctx context.Context) ([]*matching.Constellation, error)
	Constellation(ctx context.Context, id uuid.UUID) (*matching.Constellation, error)
}

type projectRequest struct {
	Template [][]float64 `json:"template"`
	Anchors  [][]float64 `json:"anchors"`
}

type matchRequest struct {
	Template string  `json:"template"`
	Anchors  []int64 `json:"anchors"`
}

type api struct {
	finder         *finder.Finder
	constellations ConstellationStore
}

func StartServer(port string, handler http.Handler) error {
	sigolo.Infof("Start server on port %s", port)
	return http.ListenAndServe(":"+port, handler)
}

func NewRouter(f *finder.Finder, constellations ConstellationStore) *mux.Router {
	a := &api{finder: f, constellations: constellations}

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			sigolo.Debugf("%s %s", request.Method, request.URL.Path)
			writer.Header().Set("Access-Control-Allow-Origin", "*")
			writer.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(writer, request)
		})
	})
	r.HandleFunc("/project", a.project).Methods(http.MethodPost)
	r.HandleFunc("/match", a.match).Methods(http.MethodPost)
	r.HandleFunc("/constellations", a.listConstellations).Methods(http.MethodGet)
	r.HandleFunc("/constellations/{uuid}", a.getConstellation).Methods(http.MethodGet)

	return r
}

func (a *api) project(writer http.ResponseWriter, request *http.Request) {
	var body projectRequest
	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error reading request body", err)
		return
	}

	template := &shape.Template{Name: "preview"}
	for _, point := range body.Template {
		if len(point) != 2 {
			writeError(writer, http.StatusBadRequest, "Template points must have two coordinates", nil)
			return
		}
		template.Points = append(template.Points, orb.Point{point[0], point[1]})
	}

	if len(body.Anchors) != 2 || len(body.Anchors[0]) != 2 || len(body.Anchors[1]) != 2 {
		writeError(writer, http.StatusBadRequest, "Exactly two anchors with two coordinates each are needed", nil)
		return
	}
	anchor1 := geometry.NewPoint(0, body.Anchors[0][0], body.Anchors[0][1])
	anchor2 := geometry.NewPoint(0, body.Anchors[1][0], body.Anchors[1][1])

	projection, err := shape.Project(template, anchor1, anchor2)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error projecting template", err)
		return
	}

	writeFeatures(writer, ownIo.ProjectionFeature(projection))
}

func (a *api) match(writer http.ResponseWriter, request *http.Request) {
	var body matchRequest
	err := json.NewDecoder(request.Body).Decode(&body)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error reading request body", err)
		return
	}

	if len(body.Anchors) != 2 {
		writeError(writer, http.StatusBadRequest, fmt.Sprintf("Exactly two anchors are needed but got %d", len(body.Anchors)), nil)
		return
	}

	template := a.finder.Template(body.Template)
	if template == nil {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("Template '%s' not found", body.Template), nil)
		return
	}

	var anchors [2]geometry.Point
	for i, id := range body.Anchors {
		store, ok := a.finder.Store(id)
		if !ok {
			writeError(writer, http.StatusNotFound, fmt.Sprintf("Store %d not found", id), nil)
			return
		}
		anchors[i] = store
	}

	projection, err := shape.Project(template, anchors[0], anchors[1])
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Error projecting template", err)
		return
	}

	result, rejection := a.finder.Matcher().Match(projection)
	if rejection != matching.Matched {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("No constellation found: %s", rejection.String()), nil)
		return
	}

	constellation := matching.NewConstellation(template.Name, result, a.finder.Matcher().Config().Metric)
	writeFeatures(writer, ownIo.ConstellationFeature(constellation))
}

func (a *api) listConstellations(writer http.ResponseWriter, request *http.Request) {
	constellations, err := a.constellations.Constellations(request.Context())
	if err != nil {
		writeError(writer, http.StatusInternalServerError, "Error reading constellations", err)
		return
	}

	sigolo.Debugf("Found %d constellations", len(constellations))

	err = ownIo.WriteConstellationsAsGeoJson(constellations, writer)
	if err != nil {
		sigolo.Errorf("Error writing constellations: %+v", err)
	}
}

func (a *api) getConstellation(writer http.ResponseWriter, request *http.Request) {
	id, err := uuid.Parse(mux.Vars(request)["uuid"])
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Invalid constellation ID", err)
		return
	}

	constellation, err := a.constellations.Constellation(request.Context(), id)
	if err != nil {
		writeError(writer, http.StatusInternalServerError, "Error reading constellation", err)
		return
	}
	if constellation == nil {
		writeError(writer, http.StatusNotFound, fmt.Sprintf("Constellation %s not found", id), nil)
		return
	}

	writeFeatures(writer, ownIo.ConstellationFeature(constellation))
}

func writeFeatures(writer http.ResponseWriter, features ...*geojson.Feature) {
	featureCollection := geojson.NewFeatureCollection()
	for _, feature := range features {
		featureCollection.Append(feature)
	}

	err := ownIo.WriteFeatureCollection(featureCollection, writer)
	if err != nil {
		sigolo.Errorf("Error writing response: %+v", err)
	}
}

func writeError(writer http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		sigolo.Errorf("%s: %+v", message, err)
	} else {
		sigolo.Debugf("%s", message)
	}
	writer.WriteHeader(status)

	errorResponseBytes, err := json.Marshal(NewErrorResponse(message, err))
	if err != nil {
		sigolo.Errorf("Error creating and marshalling error response object: %+v", err)
		return
	}

	_, err = writer.Write(errorResponseBytes)
	if err != nil {
		sigolo.Errorf("Error writing error response: %+v", err)
	}
}
