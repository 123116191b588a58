// Package policy はロールと関係（本人・所属スポンサー）だけで可否を決める。
// DBには触らない。必要な事実は呼び出し側が読み込んで渡す。
package policy

import "rewards/internal/domain/model"

func isAdmin(u model.User) bool { return u.Role == model.RoleAdmin }

// 本人のsponsorshipか
func isOwner(u model.User, s model.Sponsorship) bool {
	return u.Role == model.RoleDriver && u.ID == s.UserID
}

// スポンサーの管理（カタログ設定・所属ドライバー一覧など）
func CanManageSponsor(actor model.User, sponsorID int64) bool {
	return isAdmin(actor) || actor.WorksFor(sponsorID)
}

// 申請できるのはドライバー本人だけ
func CanApply(actor model.User) bool {
	return actor.Role == model.RoleDriver
}

// 承認・却下は所属スポンサーのマネージャーのみ
func CanReview(actor model.User, s model.Sponsorship) bool {
	return actor.WorksFor(s.SponsorID)
}

func CanRemoveSponsorship(actor model.User, s model.Sponsorship) bool {
	return isAdmin(actor) || actor.WorksFor(s.SponsorID)
}

// ポイント付与は所属マネージャーかつACTIVEのみ
func CanAward(actor model.User, s model.Sponsorship) bool {
	return actor.WorksFor(s.SponsorID) && s.Active
}

// カート操作はドライバー本人
func CanUseCart(actor model.User, s model.Sponsorship) bool {
	return isOwner(actor, s)
}

func CanCheckout(actor model.User, s model.Sponsorship) bool {
	return isOwner(actor, s) || actor.WorksFor(s.SponsorID)
}

// ポイント履歴・カートの閲覧
func CanViewSponsorship(actor model.User, s model.Sponsorship) bool {
	return isAdmin(actor) || isOwner(actor, s) || actor.WorksFor(s.SponsorID)
}

// 閲覧・キャンセルは本人・所属マネージャー・管理者
func CanViewOrder(actor model.User, s model.Sponsorship) bool {
	return CanViewSponsorship(actor, s)
}

func CanCancelOrder(actor model.User, s model.Sponsorship) bool {
	return CanViewOrder(actor, s)
}

// 発送・配達の更新はドライバー不可
func CanUpdateOrderStatus(actor model.User, s model.Sponsorship) bool {
	return isAdmin(actor) || actor.WorksFor(s.SponsorID)
}

// 本人・管理者・ドライバーのACTIVEなスポンサーのマネージャー
// activeSponsorIDsはtargetのACTIVEなsponsorshipのスポンサーID
func HasAccountAccess(actor, target model.User, activeSponsorIDs []int64) bool {
	if actor.ID == target.ID || isAdmin(actor) {
		return true
	}
	if target.Role != model.RoleDriver {
		return false
	}
	for _, id := range activeSponsorIDs {
		if actor.WorksFor(id) {
			return true
		}
	}
	return false
}

// チケットは起票者本人と管理者
func CanViewTicket(actor model.User, t model.SupportTicket) bool {
	return isAdmin(actor) || actor.ID == t.UserID
}

// スポンサー削除は管理者か、そのスポンサーのマネージャー
func CanRemoveSponsor(actor model.User, sponsorID int64) bool {
	return CanManageSponsor(actor, sponsorID)
}
