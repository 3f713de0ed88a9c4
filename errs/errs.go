// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs defines the error taxonomy shared by the process engine.
//
// Every error type has a matching sentinel so callers can classify failures
// with errors.Is without depending on the concrete type:
//
//	if errors.Is(err, errs.ErrRouting) {
//	    // a case could not leave an exclusive gateway
//	}
//
// Configuration errors are raised while the process graph is built and stop a
// simulation from starting. All other errors are case-level: they are
// reported to the orchestrator with the case id and never recovered silently.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration classifies build-time configuration errors.
	ErrConfiguration = errors.New("configuration error")

	// ErrResourceNotFound classifies references to undefined resources.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrRouting classifies exclusive gateways that cannot route a token.
	ErrRouting = errors.New("routing error")

	// ErrResourceTimeout classifies acquisitions that exceeded their deadline.
	ErrResourceTimeout = errors.New("resource timeout")

	// ErrStalled classifies cases whose tokens are parked at a join forever.
	ErrStalled = errors.New("case stalled")
)

// ConfigurationError reports an invalid process definition.
type ConfigurationError struct {
	// Component is the kind of element at fault ("activity", "resource", ...).
	Component string

	// ID identifies the element at fault. It may be empty for graph-wide errors.
	ID string

	// Reason describes what is wrong.
	Reason string
}

// Configuration returns a new ConfigurationError.
func Configuration(component, id, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		ID:        id,
		Reason:    fmt.Sprintf(format, args...),
	}
}

func (e *ConfigurationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s %q: %s", e.Component, e.ID, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ResourceNotFoundError reports an activity referencing an undefined resource.
type ResourceNotFoundError struct {
	CaseID   int
	Resource string
	NodeID   string
}

func (e *ResourceNotFoundError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("resource %q not found", e.Resource)
	}
	return fmt.Sprintf("case %d: activity %q: resource %q not found", e.CaseID, e.NodeID, e.Resource)
}

// Is reports whether target is ErrResourceNotFound.
func (e *ResourceNotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}

// RoutingError reports a token that matched no rule at an exclusive gateway
// that has no default flow.
type RoutingError struct {
	CaseID    int
	GatewayID string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("case %d: gateway %q: no rule matched and no default flow is set", e.CaseID, e.GatewayID)
}

// Is reports whether target is ErrRouting.
func (e *RoutingError) Is(target error) bool {
	return target == ErrRouting
}

// ResourceTimeoutError reports an acquisition whose deadline expired while
// waiting for a free unit. The caller may retry or abandon the case.
type ResourceTimeoutError struct {
	CaseID   int
	Resource string
	NodeID   string
	Cause    error
}

func (e *ResourceTimeoutError) Error() string {
	return fmt.Sprintf("case %d: activity %q: timed out acquiring resource %q: %v", e.CaseID, e.NodeID, e.Resource, e.Cause)
}

// Is reports whether target is ErrResourceTimeout.
func (e *ResourceTimeoutError) Is(target error) bool {
	return target == ErrResourceTimeout
}

// Unwrap returns the context error that ended the wait.
func (e *ResourceTimeoutError) Unwrap() error {
	return e.Cause
}

// StalledError reports a case that finished executing with tokens still
// parked at parallel joins, so it can never complete.
type StalledError struct {
	CaseID   int
	Gateways []string
}

func (e *StalledError) Error() string {
	return fmt.Sprintf("case %d: tokens parked at joins %v can never be merged", e.CaseID, e.Gateways)
}

// Is reports whether target is ErrStalled.
func (e *StalledError) Is(target error) bool {
	return target == ErrStalled
}
