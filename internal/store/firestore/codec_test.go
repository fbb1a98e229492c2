package firestore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chittrack/internal/core"
)

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Config: core.GroupConfig{
			ID:                     "chit-1",
			Name:                   "Shared Group",
			TotalChitValue:         500000,
			FixedMonthlyCollection: 2000,
			MonthlyPayoutBase:      25000,
			DurationMonths:         20,
			StartDate:              "2024-01-01",
			AdminPhone:             "9876543210",
		},
		Members: []core.Member{
			{ID: "m1", Name: "Asha", Phone: "9000000001", JoinDate: "2024-01-01", IsSideFundMember: true},
			{ID: "m2", Name: "Ravi", Phone: "9000000002", JoinDate: "2024-02-01"},
		},
		Payments: []core.PaymentRecord{
			{MemberID: "m1", MonthIndex: 0, Amount: 2000, ExtraAmount: 500,
				Status: core.StatusPaid, Method: core.MethodGPay, PaymentDate: "2024-01-10"},
			{MemberID: "m2", MonthIndex: 0, Amount: 2000, Status: core.StatusPending},
		},
		Auctions: []core.MonthlyAuction{
			{MonthIndex: 0, AuctionAmount: 3000},
		},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	want := sampleSnapshot()
	got := decodeSnapshot(encodeSnapshot(want))
	require.Equal(t, want, got)
}

func TestEncodeForcesZeroValues(t *testing.T) {
	snap := sampleSnapshot()
	fields := encodeSnapshot(snap)

	members := fields["members"].ArrayValue.Values
	require.Len(t, members, 2)

	// m2 is not a side-fund member; the false must still be marked for
	// serialization or the REST client drops the field entirely.
	m2 := members[1].MapValue.Fields["isSideFundMember"]
	require.False(t, m2.BooleanValue)
	require.Contains(t, m2.ForceSendFields, "BooleanValue")

	payments := fields["payments"].ArrayValue.Values
	extra := payments[1].MapValue.Fields["extraAmount"]
	require.Zero(t, extra.IntegerValue)
	require.Contains(t, extra.ForceSendFields, "IntegerValue")
}

func TestEncodeOmitsEmptyMethodAndDate(t *testing.T) {
	snap := sampleSnapshot()
	fields := encodeSnapshot(snap)

	pending := fields["payments"].ArrayValue.Values[1].MapValue.Fields
	_, hasMethod := pending["method"]
	_, hasDate := pending["paymentDate"]
	require.False(t, hasMethod)
	require.False(t, hasDate)
}

func TestDecodeEmptyDocument(t *testing.T) {
	snap := decodeSnapshot(nil)
	require.NotNil(t, snap.Members)
	require.NotNil(t, snap.Payments)
	require.NotNil(t, snap.Auctions)
	require.Empty(t, snap.Config.ID)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	fields := encodeSnapshot(sampleSnapshot())
	fields["legacyCruft"] = strValue("ignored")
	got := decodeSnapshot(fields)
	require.Equal(t, sampleSnapshot(), got)
}
