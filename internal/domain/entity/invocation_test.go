package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationReplyEncode(t *testing.T) {
	tests := []struct {
		name  string
		reply InvocationReply
		want  string
	}{
		{
			name:  "result",
			reply: InvocationReply{CallbackID: 7, Result: "hi"},
			want:  `{"callback_id":7,"result":"hi"}`,
		},
		{
			name:  "push",
			reply: NewPush(map[string]string{"msg": "hello"}),
			want:  `{"callback_id":-1,"result":{"msg":"hello"}}`,
		},
		{
			name:  "error",
			reply: InvocationReply{CallbackID: 3, Error: NewReplyError(ErrorNotFound, errors.New("no binding \"x\""))},
			want:  `{"callback_id":3,"result":null,"error":{"code":"not_found","message":"no binding \"x\""}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.reply.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestAsReplyErrorClassifiesPlainErrors(t *testing.T) {
	cause := errors.New("boom")
	re := AsReplyError(cause)
	require.NotNil(t, re)
	assert.Equal(t, ErrorCallableFailed, re.Code)
	assert.ErrorIs(t, re, cause)

	wrapped := AsReplyError(NewReplyError(ErrorInvalidParams, cause))
	assert.Equal(t, ErrorInvalidParams, wrapped.Code)
	assert.Nil(t, AsReplyError(nil))
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, StatusOK, StatusFromError(nil))
	assert.Equal(t, StatusNotFound, StatusFromError(NewReplyError(ErrorNotFound, nil)))
	assert.Equal(t, StatusCallableFailed, StatusFromError(errors.New("x")))
}

func TestPushCallbackID(t *testing.T) {
	assert.True(t, PushCallbackID.IsPush())
	assert.False(t, CallbackID(1).IsPush())
}
