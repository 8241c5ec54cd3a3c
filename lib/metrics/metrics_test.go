package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePrevOutFetch(t *testing.T) {
	before := testutil.ToFloat64(prevOutFetchTotal.WithLabelValues("leveldb", "error"))
	ObservePrevOutFetch("leveldb", errors.New("miss"), time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(prevOutFetchTotal.WithLabelValues("leveldb", "error")))

	before = testutil.ToFloat64(prevOutFetchTotal.WithLabelValues("unknown", "success"))
	ObservePrevOutFetch("", nil, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(prevOutFetchTotal.WithLabelValues("unknown", "success")))
}

func TestObserveTxVerify(t *testing.T) {
	before := testutil.ToFloat64(txVerifyTotal.WithLabelValues("success"))
	ObserveTxVerify(nil, 3, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(txVerifyTotal.WithLabelValues("success")))

	before = testutil.ToFloat64(txSignTotal.WithLabelValues("error"))
	ObserveSign(errors.New("bad key"))
	assert.Equal(t, before+1, testutil.ToFloat64(txSignTotal.WithLabelValues("error")))
}
