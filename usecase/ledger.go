package usecase

import (
	"stakepool/domain"
	"stakepool/domain/util"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tonkeeper/tongo"
)

// LedgerInteractor funds accounts on the pool's asset ledgers. It stands in for
// the asset operator, who fills the reward treasury and hands out balance
// before the pool can take deposits or pay rewards.
type LedgerInteractor struct {
	poolInteractor *PoolInteractor
	ledgers        map[string]domain.AssetIssuer
}

func NewLedgerInteractor(poolInteractor *PoolInteractor, ledgers ...domain.AssetIssuer) *LedgerInteractor {
	interactor := &LedgerInteractor{
		poolInteractor: poolInteractor,
		ledgers:        make(map[string]domain.AssetIssuer),
	}
	for _, ledger := range ledgers {
		interactor.ledgers[ledger.Symbol()] = ledger
	}
	return interactor
}

func (interactor *LedgerInteractor) ledger(symbol string) (domain.AssetIssuer, error) {
	ledger, exist := interactor.ledgers[symbol]
	if !exist {
		return nil, errors.Wrapf(domain.ErrorUnknownAsset, "%v", symbol)
	}
	return ledger, nil
}

func (interactor *LedgerInteractor) Balance(symbol string, account tongo.AccountID) (*uint256.Int, error) {
	ledger, err := interactor.ledger(symbol)
	if err != nil {
		return nil, err
	}
	return ledger.BalanceOf(account)
}

func (interactor *LedgerInteractor) Allowance(symbol string, owner, spender tongo.AccountID) (*uint256.Int, error) {
	ledger, err := interactor.ledger(symbol)
	if err != nil {
		return nil, err
	}
	return ledger.Allowance(owner, spender)
}

func (interactor *LedgerInteractor) Fund(symbol string, account tongo.AccountID, amount *uint256.Int) error {
	ledger, err := interactor.ledger(symbol)
	if err != nil {
		return err
	}
	if err = ledger.Mint(account, amount); err != nil {
		return err
	}
	log.Infof("🔵 minted %v to %v", amount.Dec(), domain.AccountKey(account))
	return nil
}

func (interactor *LedgerInteractor) Approve(symbol string, owner, spender tongo.AccountID, amount *uint256.Int) error {
	ledger, err := interactor.ledger(symbol)
	if err != nil {
		return err
	}
	if err = ledger.Approve(owner, spender, amount); err != nil {
		return err
	}
	log.Infof("🔵 %v approved %v %v to %v", domain.AccountKey(owner), amount.Dec(), symbol, domain.AccountKey(spender))
	return nil
}

// FillTreasury mints the difference between target and the treasury balance
// and raises the pool's allowance by the same amount. A treasury already
// holding target is left alone.
func (interactor *LedgerInteractor) FillTreasury(target *uint256.Int) (*domain.RewardAvailability, error) {
	pool, err := interactor.poolInteractor.Pool()
	if err != nil {
		return nil, err
	}
	ledger, err := interactor.ledger(pool.RewardAsset)
	if err != nil {
		return nil, err
	}

	balance, err := ledger.BalanceOf(pool.Treasury)
	if err != nil {
		return nil, errors.Wrap(err, "reading treasury balance")
	}
	if balance.Lt(target) {
		diff := new(uint256.Int).Sub(target, balance)
		if err = ledger.Mint(pool.Treasury, diff); err != nil {
			return nil, errors.Wrap(err, "minting into treasury")
		}

		allowance, err := ledger.Allowance(pool.Treasury, pool.PoolAddress)
		if err != nil {
			return nil, errors.Wrap(err, "reading treasury allowance")
		}
		raised, overflow := new(uint256.Int).AddOverflow(allowance, diff)
		if overflow {
			raised.SetAllOne()
		}
		if err = ledger.Approve(pool.Treasury, pool.PoolAddress, raised); err != nil {
			return nil, errors.Wrap(err, "approving pool")
		}
		log.Infof("🔵 treasury filled with %v", util.AmountString(diff, pool.Decimals, pool.RewardAsset))
	}

	return interactor.poolInteractor.treasuryInteractor.AvailableReward(pool.Treasury, pool.PoolAddress)
}
