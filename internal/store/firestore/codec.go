package firestore

import (
	fs "google.golang.org/api/firestore/v1"

	"chittrack/internal/core"
)

// The document mirrors the snapshot's JSON shape: a "config" map plus
// "members", "payments" and "auctions" arrays of maps. Integer and boolean
// zero values must still be sent, hence the ForceSendFields below.

func strValue(s string) fs.Value {
	return fs.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func intValue(n int64) fs.Value {
	return fs.Value{IntegerValue: n, ForceSendFields: []string{"IntegerValue"}}
}

func boolValue(b bool) fs.Value {
	return fs.Value{BooleanValue: b, ForceSendFields: []string{"BooleanValue"}}
}

func mapValue(fields map[string]fs.Value) fs.Value {
	return fs.Value{MapValue: &fs.MapValue{Fields: fields}}
}

func arrayValue(values []*fs.Value) fs.Value {
	return fs.Value{ArrayValue: &fs.ArrayValue{Values: values}}
}

func encodeSnapshot(snap core.Snapshot) map[string]fs.Value {
	members := make([]*fs.Value, 0, len(snap.Members))
	for _, m := range snap.Members {
		v := mapValue(encodeMember(m))
		members = append(members, &v)
	}
	payments := make([]*fs.Value, 0, len(snap.Payments))
	for _, p := range snap.Payments {
		v := mapValue(encodePayment(p))
		payments = append(payments, &v)
	}
	auctions := make([]*fs.Value, 0, len(snap.Auctions))
	for _, a := range snap.Auctions {
		v := mapValue(encodeAuction(a))
		auctions = append(auctions, &v)
	}
	return map[string]fs.Value{
		"config":   mapValue(encodeConfig(snap.Config)),
		"members":  arrayValue(members),
		"payments": arrayValue(payments),
		"auctions": arrayValue(auctions),
	}
}

func encodeConfig(c core.GroupConfig) map[string]fs.Value {
	return map[string]fs.Value{
		"id":                     strValue(c.ID),
		"name":                   strValue(c.Name),
		"totalChitValue":         intValue(c.TotalChitValue),
		"fixedMonthlyCollection": intValue(c.FixedMonthlyCollection),
		"monthlyPayoutBase":      intValue(c.MonthlyPayoutBase),
		"durationMonths":         intValue(int64(c.DurationMonths)),
		"startDate":              strValue(c.StartDate),
		"adminPhone":             strValue(c.AdminPhone),
	}
}

func encodeMember(m core.Member) map[string]fs.Value {
	return map[string]fs.Value{
		"id":               strValue(m.ID),
		"name":             strValue(m.Name),
		"phone":            strValue(m.Phone),
		"isSideFundMember": boolValue(m.IsSideFundMember),
		"joinDate":         strValue(m.JoinDate),
	}
}

func encodePayment(p core.PaymentRecord) map[string]fs.Value {
	fields := map[string]fs.Value{
		"memberId":    strValue(p.MemberID),
		"monthIndex":  intValue(int64(p.MonthIndex)),
		"amount":      intValue(p.Amount),
		"extraAmount": intValue(p.ExtraAmount),
		"status":      strValue(string(p.Status)),
	}
	if p.Method != "" {
		fields["method"] = strValue(string(p.Method))
	}
	if p.PaymentDate != "" {
		fields["paymentDate"] = strValue(p.PaymentDate)
	}
	return fields
}

func encodeAuction(a core.MonthlyAuction) map[string]fs.Value {
	return map[string]fs.Value{
		"monthIndex":    intValue(int64(a.MonthIndex)),
		"auctionAmount": intValue(a.AuctionAmount),
	}
}

func decodeSnapshot(fields map[string]fs.Value) core.Snapshot {
	snap := core.Snapshot{
		Config:   decodeConfig(asMap(fields["config"])),
		Members:  []core.Member{},
		Payments: []core.PaymentRecord{},
		Auctions: []core.MonthlyAuction{},
	}
	for _, v := range asArray(fields["members"]) {
		snap.Members = append(snap.Members, decodeMember(asMap(*v)))
	}
	for _, v := range asArray(fields["payments"]) {
		snap.Payments = append(snap.Payments, decodePayment(asMap(*v)))
	}
	for _, v := range asArray(fields["auctions"]) {
		snap.Auctions = append(snap.Auctions, decodeAuction(asMap(*v)))
	}
	return snap
}

func decodeConfig(fields map[string]fs.Value) core.GroupConfig {
	return core.GroupConfig{
		ID:                     fields["id"].StringValue,
		Name:                   fields["name"].StringValue,
		TotalChitValue:         fields["totalChitValue"].IntegerValue,
		FixedMonthlyCollection: fields["fixedMonthlyCollection"].IntegerValue,
		MonthlyPayoutBase:      fields["monthlyPayoutBase"].IntegerValue,
		DurationMonths:         int(fields["durationMonths"].IntegerValue),
		StartDate:              fields["startDate"].StringValue,
		AdminPhone:             fields["adminPhone"].StringValue,
	}
}

func decodeMember(fields map[string]fs.Value) core.Member {
	return core.Member{
		ID:               fields["id"].StringValue,
		Name:             fields["name"].StringValue,
		Phone:            fields["phone"].StringValue,
		IsSideFundMember: fields["isSideFundMember"].BooleanValue,
		JoinDate:         fields["joinDate"].StringValue,
	}
}

func decodePayment(fields map[string]fs.Value) core.PaymentRecord {
	return core.PaymentRecord{
		MemberID:    fields["memberId"].StringValue,
		MonthIndex:  int(fields["monthIndex"].IntegerValue),
		Amount:      fields["amount"].IntegerValue,
		ExtraAmount: fields["extraAmount"].IntegerValue,
		Status:      core.PaymentStatus(fields["status"].StringValue),
		Method:      core.PaymentMethod(fields["method"].StringValue),
		PaymentDate: fields["paymentDate"].StringValue,
	}
}

func decodeAuction(fields map[string]fs.Value) core.MonthlyAuction {
	return core.MonthlyAuction{
		MonthIndex:    int(fields["monthIndex"].IntegerValue),
		AuctionAmount: fields["auctionAmount"].IntegerValue,
	}
}

func asMap(v fs.Value) map[string]fs.Value {
	if v.MapValue == nil {
		return map[string]fs.Value{}
	}
	return v.MapValue.Fields
}

func asArray(v fs.Value) []*fs.Value {
	if v.ArrayValue == nil {
		return nil
	}
	return v.ArrayValue.Values
}
