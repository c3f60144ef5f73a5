package service

import (
	"time"

	"github.com/d60-Lab/quote-inbox/internal/model"
)

// ComputeNeedsReplyFrom 推断谁欠下一条回复，结果总是五个取值之一。
//
// 客户最后发言时先看供应商、再看管理员：从未回复或最后回复早于该消息者欠回复；
// 供应商最后发言时对称地先看客户。管理员最后发言时比较客户与供应商各自的
// 最后发言时间，较新的一方欠回复，相等时归客户。
func ComputeNeedsReplyFrom(sig ThreadSignal) ReplyParty {
	if sig.LastMessageRole == "" || sig.LastMessageAt == nil {
		return ReplyNone
	}
	last := *sig.LastMessageAt

	switch sig.LastMessageRole {
	case model.RoleCustomer:
		return firstBehind(sig, last, model.RoleSupplier, model.RoleAdmin)
	case model.RoleSupplier:
		return firstBehind(sig, last, model.RoleCustomer, model.RoleAdmin)
	case model.RoleAdmin:
		return mostRecentCounterpart(sig.CustomerLastAt, sig.SupplierLastAt)
	default:
		return ReplyUnknown
	}
}

func firstBehind(sig ThreadSignal, last time.Time, candidates ...model.Role) ReplyParty {
	for _, r := range candidates {
		at := sig.lastAt(r)
		if at == nil || at.Before(last) {
			return ReplyParty(r)
		}
	}
	return ReplyNone
}

// TODO: confirm with product that equal timestamps should go to the customer.
func mostRecentCounterpart(customerAt, supplierAt *time.Time) ReplyParty {
	switch {
	case customerAt == nil && supplierAt == nil:
		return ReplyNone
	case supplierAt == nil:
		return ReplyCustomer
	case customerAt == nil:
		return ReplySupplier
	case !customerAt.Before(*supplierAt):
		return ReplyCustomer
	default:
		return ReplySupplier
	}
}
