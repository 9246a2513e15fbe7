package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/corpus"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

var labelPathPattern = regexp.MustCompile(`^[-_A-Za-z0-9]+$`)

var errReadOnlyModel = errors.New("classifier was loaded from a model file and cannot be retrained")

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var (
	makeSignalChannel = func() chan os.Signal { return make(chan os.Signal, 1) }
	notifySignals     = func(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
	newServer         = func(addr string, handler http.Handler) httpServer {
		return &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       30 * time.Second,
		}
	}
	logFatal = func(v ...interface{}) { log.Fatal(v...) }
	runMain  = func() error {
		return newCommand().Dispatch(os.Args[1:])
	}
)

// ClassifierAPI serves classifier HTTP endpoints and shared classifier state.
// A trainer-backed API accepts training; one built from a saved model does not.
type ClassifierAPI struct {
	trainer    *bayes.Trainer
	classifier *bayes.Classifier // built lazily from trainer, nil when stale
	mu         sync.RWMutex
	ready      atomic.Bool
}

// NewTrainableAPI returns an API that trains incrementally through /train.
func NewTrainableAPI(trainer *bayes.Trainer) *ClassifierAPI {
	return &ClassifierAPI{trainer: trainer}
}

// NewModelAPI returns a read-only API over a trained classifier.
func NewModelAPI(classifier *bayes.Classifier) *ClassifierAPI {
	return &ClassifierAPI{classifier: classifier}
}

// RegisterRoutes registers all API routes on the provided ServeMux.
func (c *ClassifierAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/info", c.InfoHandler)
	mux.HandleFunc("/train/", c.TrainHandler)
	mux.HandleFunc("/classify", c.ClassifyHandler)
	mux.HandleFunc("/score", c.ScoreHandler)
	mux.HandleFunc("/flush", c.FlushHandler)
	mux.HandleFunc("/healthz", HealthHandler)
	mux.HandleFunc("/readyz", c.ReadyHandler)
}

// runServer serves api on port until SIGINT or SIGTERM.
func runServer(api *ClassifierAPI, port, authToken string) error {
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	var handler http.Handler = mux
	if authToken != "" {
		handler = withAuthorizationToken(mux, authToken)
	}

	api.ready.Store(true)
	server := newServer(":"+port, handler)
	log.Printf("Server is listening on port %s.", port)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logFatal(err)
		}
	}()

	sigCh := makeSignalChannel()
	notifySignals(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	api.ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func withAuthorizationToken(next http.Handler, token string) http.Handler {
	expected := []byte("Bearer " + token)
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/healthz" || req.URL.Path == "/readyz" {
			next.ServeHTTP(w, req)
			return
		}

		got := []byte(req.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sentibayes"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, req)
	})
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	jsonResponse, err := json.Marshal(value)
	if err != nil {
		http.Error(w, `{"error":"failed to marshal response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonResponse); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readBody(w http.ResponseWriter, req *http.Request) (string, bool) {
	req.Body = http.MaxBytesReader(w, req.Body, maxRequestBodyBytes)
	defer req.Body.Close()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return "", false
	}

	return string(body), true
}

// labelFromPath maps /train/pos to the canonical label __label__pos.
func labelFromPath(path, prefix string) (string, bool) {
	suffix := strings.TrimPrefix(path, prefix)
	if suffix == "" || strings.Contains(suffix, "/") {
		return "", false
	}

	if !labelPathPattern.MatchString(suffix) {
		return "", false
	}

	return corpus.LabelMarker + suffix, true
}

func requireMethod(w http.ResponseWriter, req *http.Request, method string) bool {
	if req.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// currentClassifier returns the classifier, rebuilding it from the trainer
// after training invalidated it.
func (c *ClassifierAPI) currentClassifier() (*bayes.Classifier, error) {
	c.mu.RLock()
	classifier := c.classifier
	c.mu.RUnlock()
	if classifier != nil {
		return classifier, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.classifier == nil {
		if c.trainer == nil {
			return nil, bayes.ErrEmptyCorpus
		}
		built, err := c.trainer.Classifier(trainedLabels(c.trainer)...)
		if err != nil {
			return nil, err
		}
		c.classifier = built
	}
	return c.classifier, nil
}

// trainedLabels returns the labels holding at least one token.
func trainedLabels(trainer *bayes.Trainer) []string {
	table := trainer.Table()
	var labels []string
	for _, name := range table.Names() {
		if cat, ok := table.LookupCategory(name); ok && cat.Distinct() > 0 {
			labels = append(labels, name)
		}
	}
	return labels
}

func writeClassifierError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusConflict, "classifier is not trained: "+err.Error())
}

// InfoHandler returns the current classifier training state.
func (c *ClassifierAPI) InfoHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}

	classifier, _ := c.currentClassifier()

	c.mu.RLock()
	response := NewInfoClassifierResponse(c.trainer, classifier)
	c.mu.RUnlock()

	writeJSON(w, http.StatusOK, response)
}

// TrainHandler trains a label using request body text.
func (c *ClassifierAPI) TrainHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	label, ok := labelFromPath(req.URL.Path, "/train/")
	if !ok {
		writeError(w, http.StatusNotFound, "invalid label route")
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	c.mu.Lock()
	if c.trainer == nil {
		c.mu.Unlock()
		writeError(w, http.StatusConflict, errReadOnlyModel.Error())
		return
	}
	c.trainer.Add(body, label)
	c.classifier = nil
	response := NewTrainingClassifierResponse(c.trainer, true)
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, response)
}

// ClassifyHandler classifies request body text and returns the top match.
func (c *ClassifierAPI) ClassifyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	classifier, err := c.currentClassifier()
	if err != nil {
		writeClassifierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classifier.Classify(body))
}

// ScoreHandler returns per-label log scores for request body text.
func (c *ClassifierAPI) ScoreHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	body, ok := readBody(w, req)
	if !ok {
		return
	}

	classifier, err := c.currentClassifier()
	if err != nil {
		writeClassifierError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, classifier.Score(body))
}

// FlushHandler deletes all training data and gives us a fresh slate.
func (c *ClassifierAPI) FlushHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodPost) {
		return
	}

	c.mu.Lock()
	if c.trainer == nil {
		c.mu.Unlock()
		writeError(w, http.StatusConflict, errReadOnlyModel.Error())
		return
	}
	c.trainer = bayes.NewTrainer(c.trainer.Analyzer())
	c.classifier = nil
	response := NewTrainingClassifierResponse(c.trainer, true)
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, response)
}

// HealthHandler returns liveness status for process health checks.
func HealthHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler returns readiness status for traffic checks.
func (c *ClassifierAPI) ReadyHandler(w http.ResponseWriter, req *http.Request) {
	if !requireMethod(w, req, http.MethodGet) {
		return
	}
	if !c.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func main() {
	if err := runMain(); err != nil {
		logFatal(err)
	}
}
