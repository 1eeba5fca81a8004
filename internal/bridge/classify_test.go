package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func entityWithResponse(t *testing.T, body string) *CallEntity {
	t.Helper()
	e := NewCallEntity("query", "{}")
	e.SetResponse(body)
	return e
}

func TestClassifySuccess(t *testing.T) {
	e := entityWithResponse(t, `{"result":"fine"}`)
	v := Classify(e, nil)
	require.Equal(t, CategorySuccess, v.Category)
}

func TestClassifyTransportOnInvokeError(t *testing.T) {
	e := NewCallEntity("query", "{}")
	v := Classify(e, errors.New("host threw"))
	require.Equal(t, CategoryTransport, v.Category)
	require.Equal(t, "host threw", v.Message)
}

func TestClassifyNoResponse(t *testing.T) {
	e := NewCallEntity("query", "{}")
	v := Classify(e, nil)
	require.Equal(t, CategoryNoResponse, v.Category)
}

func TestClassifyRetryableCodes(t *testing.T) {
	for _, code := range []string{"1004", "1009", "2000", "46", "48"} {
		e := entityWithResponse(t, `{"error":"`+code+`","errorMessage":"please wait"}`)
		v := Classify(e, nil)
		require.Equal(t, CategoryBusinessRetryable, v.Category, "code %s", code)
		require.Equal(t, code, v.Code)
	}
}

func TestClassifyNumericErrorCode(t *testing.T) {
	e := entityWithResponse(t, `{"error":1004,"errorMessage":"busy"}`)
	v := Classify(e, nil)
	require.Equal(t, CategoryBusinessRetryable, v.Category)
	require.Equal(t, "1004", v.Code)
}

func TestClassifyRetryableMessageMarks(t *testing.T) {
	cases := []string{
		`{"error":"9999","errorMessage":"System Busy, slow down"}`,
		`{"error":"9999","errorMessage":"request rejected by gateway"}`,
		`{"error":"9999","errorMessage":"network unreachable"}`,
		`{"error":"9999","errorMessage":"please try again later"}`,
	}
	for _, body := range cases {
		v := Classify(entityWithResponse(t, body), nil)
		require.Equal(t, CategoryBusinessRetryable, v.Category, "body %s", body)
	}
}

func TestClassifyAuthMarksWinOverRetryableCode(t *testing.T) {
	e := entityWithResponse(t, `{"error":"1004","errorMessage":"login timeout"}`)
	v := Classify(e, nil)
	require.Equal(t, CategoryAuthRequired, v.Category)
}

func TestClassifyAuthMarks(t *testing.T) {
	cases := []string{
		`{"error":"401","errorMessage":"Login Timeout"}`,
		`{"error":"401","errorMessage":"session invalid, re-login"}`,
		`{"error":"401","errorMessage":"verification required to continue"}`,
	}
	for _, body := range cases {
		v := Classify(entityWithResponse(t, body), nil)
		require.Equal(t, CategoryAuthRequired, v.Category, "body %s", body)
	}
}

func TestClassifyUnknownCodeIsDomainError(t *testing.T) {
	e := entityWithResponse(t, `{"error":"7777","errorMessage":"strange"}`)
	v := Classify(e, nil)
	require.Equal(t, CategoryDomainError, v.Category)
	require.Equal(t, "7777", v.Code)
	require.Equal(t, "strange", v.Message)
}

func TestClassifyErrorFlagWithUnknownCodeIsDomainError(t *testing.T) {
	e := entityWithResponse(t, `{"error":"7777","errorMessage":"strange"}`)
	e.SetError()
	v := Classify(e, nil)
	require.Equal(t, CategoryDomainError, v.Category)
}

func TestClassifyBusinessStyleCodeIsDomainError(t *testing.T) {
	e := entityWithResponse(t, `{"resultCode":"INSUFFICIENT_FUNDS","errorMessage":"insufficient funds"}`)
	v := Classify(e, nil)
	require.Equal(t, CategoryDomainError, v.Category)
	require.Equal(t, "INSUFFICIENT_FUNDS", v.Code)
}

func TestClassifyResultCodeField(t *testing.T) {
	e := entityWithResponse(t, `{"resultCode":"1009","resultDesc":"throttled"}`)
	v := Classify(e, nil)
	require.Equal(t, CategoryBusinessRetryable, v.Category)
	require.Equal(t, "1009", v.Code)
	require.Equal(t, "throttled", v.Message)
}

func TestClassifySuccessStringCodeIgnored(t *testing.T) {
	e := entityWithResponse(t, `{"resultCode":"SUCCESS","value":1}`)
	v := Classify(e, nil)
	require.Equal(t, CategorySuccess, v.Category)
}

func TestSilentOperations(t *testing.T) {
	s := NewSilentOperations("a", " b ", "")
	require.True(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
	require.False(t, s.Contains("c"))
}

func TestClassifiedErrorString(t *testing.T) {
	v := &ClassifiedError{Category: CategoryBusinessRetryable, Code: "1004", Message: "busy", Operation: "query"}
	require.Contains(t, v.Error(), "business_retryable")
	require.Contains(t, v.Error(), "1004")
}
