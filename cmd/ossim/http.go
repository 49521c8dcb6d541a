// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

func startHTTPServer(ipport string, handler http.Handler) {
	srv := &http.Server{
		Addr:    ipport,
		Handler: handler,
	}

	log.Infof("Status API listening on %s", ipport)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("Status API stopped")
	}
}
