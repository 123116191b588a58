package usecase

import (
	"context"

	"rewards/internal/domain/model"
	repo "rewards/internal/repository"

	"github.com/pkg/errors"
)

// sponsorshipを消すときの後片付け（カート・注文と配送先・ポイント履歴）
// 同じtxの中で呼ぶこと
func removeSponsorshipTx(ctx context.Context, r repo.TxRepos, s model.Sponsorship) error {
	cartItemIDs, err := r.Carts().Clear(ctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "clear cart")
	}
	addressIDs, err := r.Orders().AddressIDsBySponsorshipID(ctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "list order addresses")
	}
	orderItemIDs, err := r.Orders().DeleteBySponsorshipID(ctx, s.ID)
	if err != nil {
		return errors.Wrap(err, "delete orders")
	}
	//最後に使った住所（User.AddressID）は残る
	if err := r.Addresses().DeleteOrphaned(ctx, addressIDs); err != nil {
		return errors.Wrap(err, "delete order addresses")
	}
	if err := r.Ledger().DeleteBySponsorshipID(ctx, s.ID); err != nil {
		return errors.Wrap(err, "delete ledger")
	}
	if err := r.Sponsorships().Delete(ctx, s.ID); err != nil {
		return errors.Wrap(err, "delete sponsorship")
	}
	return collectItems(ctx, r, append(cartItemIDs, orderItemIDs...))
}

// どこからも参照されなくなった商品を消す
func collectItems(ctx context.Context, r repo.TxRepos, itemIDs []int64) error {
	seen := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := r.Items().DeleteIfOrphaned(ctx, id); err != nil {
			return errors.Wrapf(err, "collect item %d", id)
		}
	}
	return nil
}

// ユーザー本人が持つもの（sponsorship・チケット・住所）と本人を消す
func removeUserTx(ctx context.Context, r repo.TxRepos, userID int64) error {
	list, err := r.Sponsorships().ListByUserID(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "list sponsorships")
	}
	for _, s := range list {
		if err := removeSponsorshipTx(ctx, r, s); err != nil {
			return err
		}
	}
	if err := r.Tickets().DeleteByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, "delete tickets")
	}
	if err := r.Addresses().DeleteByUserID(ctx, userID); err != nil {
		return errors.Wrap(err, "delete addresses")
	}
	return r.Users().Delete(ctx, userID)
}
