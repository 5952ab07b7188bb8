package stripe_event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/fatflowers/sponsorship/pkg/billingerr"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	}).Header
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"ping.test","created":1700000000,"data":{"object":{"id":"x"}}}`)

	tests := []struct {
		name    string
		header  func() string
		secret  string
		payload []byte
		wantErr error
	}{
		{
			name:    "valid",
			header:  func() string { return sign(t, payload, testSecret, time.Now()) },
			secret:  testSecret,
			payload: payload,
		},
		{
			name:    "wrong secret",
			header:  func() string { return sign(t, payload, "whsec_other", time.Now()) },
			secret:  testSecret,
			payload: payload,
			wantErr: billingerr.ErrInvalidSignature,
		},
		{
			name:    "tampered body",
			header:  func() string { return sign(t, payload, testSecret, time.Now()) },
			secret:  testSecret,
			payload: []byte(`{"id":"evt_1","object":"event","type":"ping.test","created":1700000000,"data":{"object":{"id":"y"}}}`),
			wantErr: billingerr.ErrInvalidSignature,
		},
		{
			name:    "expired timestamp",
			header:  func() string { return sign(t, payload, testSecret, time.Now().Add(-time.Hour)) },
			secret:  testSecret,
			payload: payload,
			wantErr: billingerr.ErrInvalidSignature,
		},
		{
			name:    "missing header",
			header:  func() string { return "" },
			secret:  testSecret,
			payload: payload,
			wantErr: billingerr.ErrInvalidSignature,
		},
		{
			name:    "garbage header",
			header:  func() string { return "not-a-signature" },
			secret:  testSecret,
			payload: payload,
			wantErr: billingerr.ErrInvalidSignature,
		},
		{
			name:    "missing secret",
			header:  func() string { return sign(t, payload, testSecret, time.Now()) },
			secret:  "",
			payload: payload,
			wantErr: billingerr.ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := Verify(tt.payload, tt.header(), tt.secret, 5*time.Minute)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, event)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "evt_1", event.ID)
			require.EqualValues(t, "ping.test", event.Type)
		})
	}
}

func TestVerify_SignedButNotAnEvent(t *testing.T) {
	payload := []byte(`not json`)
	_, err := Verify(payload, sign(t, payload, testSecret, time.Now()), testSecret, time.Minute)
	require.ErrorIs(t, err, billingerr.ErrMalformedEvent)
}
