package bridge

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/bcm"
	"github.com/hubertat/lolgpio/drivers"
)

const tokenHeader = "lolgpio-token"
const httpTimeoutsMs = 3000
const maxBodyBytes = 64

// StatusSetter receives open/closed status updates.
type StatusSetter interface {
	SetOpen(open bool) error
}

type PinStatus struct {
	Name      string
	Pin       uint16
	Direction string
	Level     int
	Error     string `json:",omitempty"`
}

type Server struct {
	Addr  string
	Token string

	driver drivers.IoDriver
	attrs  *Attributes
	status StatusSetter

	server    *http.Server
	serverErr chan error
	logger    *log.Logger
}

// NewServer serves the attributes of driver. status may be nil.
func NewServer(addr string, token string, driver drivers.IoDriver, status StatusSetter) *Server {
	return &Server{
		Addr:   addr,
		Token:  token,
		driver: driver,
		attrs:  NewAttributes(driver),
		status: status,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "bridge",
			Level:  log.GetLevel(),
		}),
	}
}

func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/gpio", s.handleList)
	router.GET("/gpio/:name", s.handleRead)
	router.PUT("/gpio/:name", s.handleWrite)
	router.POST("/gpio/:name", s.handleWrite)
	if s.status != nil {
		router.PUT("/status", s.handleStatus)
	}
	return router
}

// Start listens in the background. Serve errors are reported by Err.
func (s *Server) Start() {
	httpTimeout := httpTimeoutsMs * time.Millisecond

	s.server = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
		WriteTimeout:      httpTimeout,
		IdleTimeout:       2 * httpTimeout,
	}
	s.serverErr = make(chan error, 1)

	go func() {
		s.logger.Info("listening", "addr", s.Addr)
		s.serverErr <- s.server.ListenAndServe()
	}()
}

func (s *Server) Err() <-chan error {
	return s.serverErr
}

func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if len(s.Token) == 0 {
		return true
	}
	if r.Header.Get(tokenHeader) != s.Token {
		http.Error(w, "token mismatch", http.StatusUnauthorized)
		return false
	}
	return true
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, ErrBadAttribute),
		errors.Is(err, ErrBadValue),
		errors.Is(err, bcm.ErrInvalidValue),
		errors.Is(err, bcm.ErrInvalidMode):
		return http.StatusBadRequest
	case errors.Is(err, drivers.ErrPinNotConfigured),
		errors.Is(err, drivers.ErrPinRange):
		return http.StatusNotFound
	case errors.Is(err, bcm.ErrUnmapped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "code", code, "err", err)
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}

	text, err := s.attrs.Read(p.ByName("name"))
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, text)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := s.attrs.Write(p.ByName("name"), string(body)); err != nil {
		s.fail(w, err)
		return
	}

	s.logger.Debug("attribute written", "name", p.ByName("name"), "value", strings.TrimSpace(string(body)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}

	inputs, outputs := s.driver.GetAllIo()
	list := []PinStatus{}
	add := func(pin uint16, direction string) {
		ps := PinStatus{Name: AttributeName(pin), Pin: pin, Direction: direction}
		level, err := s.driver.ReadPin(pin)
		if err != nil {
			ps.Error = err.Error()
		} else if level {
			ps.Level = 1
		}
		list = append(list, ps)
	}
	for _, pin := range inputs {
		add(pin, bcm.Input.String())
	}
	for _, pin := range outputs {
		add(pin, bcm.Output.String())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if !s.authorized(w, r) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	open, err := ParseStatus(string(body))
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.status.SetOpen(open); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ParseStatus accepts "open"/"closed" as well as "1"/"0".
func ParseStatus(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "open", "1":
		return true, nil
	case "closed", "0":
		return false, nil
	}
	return false, errors.Wrapf(ErrBadValue, "status %q", text)
}

// FormatStatus is the inverse of ParseStatus.
func FormatStatus(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}
