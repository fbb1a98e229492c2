package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chittrack/internal/auth"
	"chittrack/internal/core"
	"chittrack/internal/insight"
	"chittrack/internal/log"
	"chittrack/internal/services"
)

type loginRequest struct {
	Phone string `json:"phone"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := auth.Login(s.svc.Snapshot(), req.Phone)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownPhone) {
			writeError(w, http.StatusUnauthorized, "phone number not recognized")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := s.jwt.Generate(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.svc.RememberSession(r.Context(), session.Role, session.Phone, session.Name)
	s.logger.Info("login",
		log.FieldOperation, log.OpLogin,
		log.FieldRole, string(session.Role))
	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		Role:  string(session.Role),
		Name:  session.Name,
		Phone: session.Phone,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.svc.ForgetSession(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type snapshotResponse struct {
	core.Snapshot
	SyncStatus services.SyncStatus `json:"syncStatus"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotResponse{
		Snapshot:   s.svc.Snapshot().Normalized(),
		SyncStatus: s.svc.Status(),
	})
}

type dashboardResponse struct {
	Overview core.Overview `json:"overview"`
	Ledger   core.Ledger   `json:"ledger"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSON(w, http.StatusOK, dashboardResponse{
		Overview: s.svc.Overview(now),
		Ledger:   s.svc.Ledger(now),
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if !session.Role.CanMutate() {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	snap := s.svc.Snapshot()
	overview := s.svc.Overview(time.Now())

	// Serve the cached narrative while the snapshot is unchanged; model
	// calls are slow and metered.
	key := insightCacheKey(snap)
	if cached, ok := s.insightCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	out := insight.GenerateOrFallback(r.Context(), s.insights, snap, overview)
	s.insightCache.Set(key, out)
	writeJSON(w, http.StatusOK, out)
}

func insightCacheKey(snap core.Snapshot) string {
	raw, err := json.Marshal(snap.Normalized())
	if err != nil {
		return "unkeyed"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type paymentRequest struct {
	MemberID    string `json:"memberId"`
	MonthIndex  int    `json:"monthIndex"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	ExtraAmount int64  `json:"extraAmount"`
	PaymentDate string `json:"paymentDate"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MemberID == "" {
		writeError(w, http.StatusBadRequest, "memberId is required")
		return
	}
	if _, ok := s.svc.Snapshot().FindMember(req.MemberID); !ok {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	err := s.svc.RecordPayment(r.Context(), sessionFrom(r).Role,
		req.MemberID, req.MonthIndex,
		core.PaymentStatus(req.Status), core.PaymentMethod(req.Method),
		req.ExtraAmount, req.PaymentDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Snapshot().Normalized())
}

type auctionRequest struct {
	MonthIndex    int   `json:"monthIndex"`
	AuctionAmount int64 `json:"auctionAmount"`
}

func (s *Server) handleRecordAuction(w http.ResponseWriter, r *http.Request) {
	var req auctionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.svc.RecordAuction(r.Context(), sessionFrom(r).Role, req.MonthIndex, req.AuctionAmount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Snapshot().Normalized())
}

type configRequest struct {
	Name                   *string `json:"name"`
	TotalChitValue         *int64  `json:"totalChitValue"`
	FixedMonthlyCollection *int64  `json:"fixedMonthlyCollection"`
	MonthlyPayoutBase      *int64  `json:"monthlyPayoutBase"`
	DurationMonths         *int    `json:"durationMonths"`
	StartDate              *string `json:"startDate"`
	AdminPhone             *string `json:"adminPhone"`
}

func (s *Server) handleUpsertConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartDate != nil {
		if _, err := core.ParseDate(*req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
			return
		}
	}
	if req.DurationMonths != nil && *req.DurationMonths <= 0 {
		writeError(w, http.StatusBadRequest, "durationMonths must be positive")
		return
	}

	err := s.svc.UpsertConfig(r.Context(), sessionFrom(r).Role, core.ConfigPatch{
		Name:                   req.Name,
		TotalChitValue:         req.TotalChitValue,
		FixedMonthlyCollection: req.FixedMonthlyCollection,
		MonthlyPayoutBase:      req.MonthlyPayoutBase,
		DurationMonths:         req.DurationMonths,
		StartDate:              req.StartDate,
		AdminPhone:             req.AdminPhone,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Snapshot().Config)
}

type memberRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	JoinDate         string `json:"joinDate"`
	IsSideFundMember bool   `json:"isSideFundMember"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := (core.Member{Name: req.Name}).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	member, err := s.svc.AddMember(r.Context(), sessionFrom(r).Role, core.MemberDraft{
		Name:             req.Name,
		Phone:            req.Phone,
		JoinDate:         req.JoinDate,
		IsSideFundMember: req.IsSideFundMember,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

type memberPatchRequest struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	JoinDate         *string `json:"joinDate"`
	IsSideFundMember *bool   `json:"isSideFundMember"`
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	err := s.svc.UpdateMember(r.Context(), sessionFrom(r).Role, id, core.MemberPatch{
		Name:             req.Name,
		Phone:            req.Phone,
		JoinDate:         req.JoinDate,
		IsSideFundMember: req.IsSideFundMember,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	member, _ := s.svc.Snapshot().FindMember(id)
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.RemoveMember(r.Context(), sessionFrom(r).Role, id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
