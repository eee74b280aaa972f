// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines a generic, reusable Pub/Sub message listener. The core
// idea is to abstract the complexity of receiving messages from a Pub/Sub
// subscription and to delegate the actual message processing to a handler
// function. The dashboard uses this to learn about newly finished pipeline
// jobs and invalidate its cached job index.
//
// Logic Flow:
//  1. An instance of PubSubListener is created with a client and a subscription ID.
//  2. A handler (a piece of business logic) is attached to this listener.
//  3. The `Listen` method is called, which starts an asynchronous background process (a goroutine).
//  4. This goroutine continuously waits for new messages from the specified subscription.
//  5. When a message arrives, it's passed to the attached handler for processing.
//  6. The message is "acknowledged" (Ack'd) only if the handler completes successfully,
//     ensuring reliable, at-least-once message processing.
//  7. The entire process is instrumented with OpenTelemetry for tracing and monitoring.
//
// Structs:
//   - PubSubListener: Manages the connection to a Pub/Sub subscription and holds
//     the handler that will process incoming messages.
//
// Functions:
//   - NewPubSubListener: Constructor for creating a new PubSubListener.
//   - SetHandler: Attaches a processing handler to the listener.
//   - Listen: Starts the background process to receive and handle messages.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MessageHandler is the business logic executed for each received message.
// Returning a non-nil error leaves the message un-acked so the subscription's
// retry policy can redeliver it.
type MessageHandler func(ctx context.Context, data []byte) error

// PubSubListener is a struct that encapsulates the components needed to listen
// to a specific Google Cloud Pub/Sub subscription. It acts as a wrapper that
// connects a subscription to a processing handler. Since listeners have a
// life-cycle independent of individual API requests, they are considered a
// core "cloud" component.
type PubSubListener struct {
	client       *pubsub.Client       // The client for interacting with the Pub/Sub service.
	subscription *pubsub.Subscription // The specific subscription this listener will pull messages from.
	handler      MessageHandler       // The handler to execute for each message received.
}

// NewPubSubListener is the constructor for creating a PubSubListener. It
// initializes the listener with a Pub/Sub client, the ID of the subscription
// to listen to, and the handler that will process the messages.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client for connecting to the service.
//   - subscriptionID: The string ID of the subscription (e.g., "my-subscription").
//   - handler: A MessageHandler that defines the business logic to execute on each message.
//
// Outputs:
//   - *PubSubListener: A pointer to the newly created and configured listener.
//   - error: An error if the listener could not be created (though in this implementation, it always returns nil).
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	handler MessageHandler,
) (*PubSubListener, error) {
	// Get a reference to the subscription object from the Pub/Sub client using its ID.
	sub := pubsubClient.Subscription(subscriptionID)

	return &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		handler:      handler,
	}, nil
}

// SetHandler attaches a handler to the listener. This is useful for scenarios
// where the listener is created before the full processing pipeline is
// assembled. It ensures that a handler is not accidentally overwritten.
func (m *PubSubListener) SetHandler(handler MessageHandler) {
	// Only set the handler if it hasn't been set already. This prevents
	// accidental overwrites and ensures the initial configuration is respected.
	if m.handler == nil {
		m.handler = handler
	}
}

// Listen starts the asynchronous message receiving process. It runs in a
// separate goroutine so it doesn't block the main application thread. This
// allows the server to continue handling API requests while listening for
// messages in the background.
//
// Inputs:
//   - ctx: A context.Context that controls the lifecycle of the listener. If this
//     context is canceled (e.g., during graceful shutdown), the message receiving will stop.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening for pub/sub messages", "subscription", m.subscription.String())

	go func() {
		// Spans created here tie background message handling into the same
		// trace pipeline as the HTTP handlers.
		tracer := otel.Tracer("message-listener")

		// The subscription.Receive method blocks and waits for messages. It
		// takes a callback function executed for each message that arrives.
		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))

			if err := m.handler(spanCtx, msg.Data); err != nil {
				span.SetStatus(codes.Error, "failed")
				slog.Error("error handling pub/sub message", "error", err)
				// By *not* calling msg.Ack() or msg.Nack(), we allow the
				// message to be redelivered after its acknowledgement deadline
				// expires, following the subscription's retry policy.
			} else {
				span.SetStatus(codes.Ok, "success")
				// Acknowledge the message. This tells Pub/Sub that the message
				// has been successfully processed and can be deleted from the
				// subscription.
				msg.Ack()
			}

			span.End()
		})

		// If the Receive call exits (e.g., because the context was canceled),
		// check if there was an error and log it.
		if err != nil {
			slog.Error("error receiving pub/sub data", "error", err)
		}
	}()
}
