// Package server implements GVSP-S, the GigE Vision streaming server:
// a UDP sender that, once started, paces one frame per configured
// period, packetising each image as Leader / N x Payload / Trailer.
// It implements the gvcp/server.StreamController capability so GVCP-S
// can drive it from ACQUISITION_START/STOP.
package server
