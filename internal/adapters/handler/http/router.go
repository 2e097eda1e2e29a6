package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	electionHandler *ElectionHandler,
	voterHandler *VoterHandler,
	voteHandler *VoteHandler,
	resultsHandler *ResultsHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/elections", func(r chi.Router) {
			r.Post("/", electionHandler.CreateElection)
			r.Get("/{id}", electionHandler.GetElection)
			r.Put("/{id}", electionHandler.UpdateElection)
			r.Post("/{id}/start", electionHandler.StartElection)
			r.Post("/{id}/close", electionHandler.CloseElection)

			r.Post("/{id}/voters", voterHandler.AddVoter)
			r.Get("/{id}/voters", voterHandler.ListVoters)
			r.Post("/{id}/voters/reset-tokens", voterHandler.ResetTokens)

			r.Get("/{id}/results", resultsHandler.GetResults)
			r.Get("/{id}/quorum", resultsHandler.GetQuorum)
			r.Get("/{id}/turnout", resultsHandler.GetTurnout)
			r.Post("/{id}/observers", resultsHandler.GrantObserver)

			r.Get("/{id}/receipts/{hash}", voteHandler.VerifyReceipt)
		})

		r.Route("/voters", func(r chi.Router) {
			r.Put("/{voterID}", voterHandler.UpdateVoter)
			r.Delete("/{voterID}", voterHandler.DeleteVoter)
		})

		r.Post("/votes", voteHandler.CastVote)
		r.Get("/observer", resultsHandler.ObserverResults)
	})

	return r
}
