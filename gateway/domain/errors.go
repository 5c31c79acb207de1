package domain

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidInput: nome vazio ou curto demais. Erro do cliente, nunca é repetido.
	ErrInvalidInput = errors.New("invalid character name")
	// ErrQueueFull: o scheduler já tem o máximo de tarefas pendentes.
	ErrQueueFull = errors.New("upstream queue is full")
	// ErrSchedulerStopped: o loop do scheduler foi encerrado.
	ErrSchedulerStopped = errors.New("upstream scheduler stopped")
)

// UpstreamError representa falha do ranking. Status 0 significa que nem houve resposta.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Code() string {
	if e.Status == 0 {
		return "UPSTREAM_UNREACHABLE"
	}
	return "UPSTREAM_" + strconv.Itoa(e.Status)
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code(), e.Err)
	}
	return e.Code()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Transient indica falhas em que vale a pena o cliente tentar de novo mais tarde.
func (e *UpstreamError) Transient() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}
