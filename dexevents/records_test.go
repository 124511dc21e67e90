package dexevents

import (
	"encoding/json"
	"testing"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePumpSwapCreatePoolEvent(t *testing.T) {
	w := &le{}
	w.i64(1_700_000_100)
	w.u16(7)
	w.key(testKey(10)).key(testBaseMint).key(WSOL_MINT)
	w.u8(6).u8(9)
	w.u64(1_000_000).u64(2_000_000).u64(1_000_001).u64(2_000_002)
	w.u64(1_000).u64(44_721).u64(43_721)
	w.u8(254)
	w.key(testPool).key(testKey(11)).key(testKey(12)).key(testKey(13)).key(testKey(14))
	payload := w.bytes()
	require.Len(t, payload, PumpSwapCreatePoolEventMinLen)

	ev, err := DecodePumpSwapCreatePoolEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, PumpSwapCreatePoolEventData{
		Timestamp:             1_700_000_100,
		Index:                 7,
		Creator:               testKey(10),
		BaseMint:              testBaseMint,
		QuoteMint:             WSOL_MINT,
		BaseMintDecimals:      6,
		QuoteMintDecimals:     9,
		BaseAmountIn:          1_000_000,
		QuoteAmountIn:         2_000_000,
		PoolBaseAmount:        1_000_001,
		PoolQuoteAmount:       2_000_002,
		MinimumLiquidity:      1_000,
		InitialLiquidity:      44_721,
		LpTokenAmountOut:      43_721,
		PoolBump:              254,
		Pool:                  testPool,
		LpMint:                testKey(11),
		UserBaseTokenAccount:  testKey(12),
		UserQuoteTokenAccount: testKey(13),
		CoinCreator:           testKey(14),
	}, ev.PumpSwapCreatePoolEventData)

	// the pool token account only comes from the create_pool instruction
	data := (&le{}).u16(7).u64(1_000_000).u64(2_000_000).key(testKey(14)).bytes()
	require.Len(t, data, PumpSwapCreatePoolIxMinLen)
	ix, err := DecodePumpSwapCreatePoolInstruction(data, testKeys(400, 11))
	require.NoError(t, err)
	assert.Equal(t, uint16(7), ix.Index)
	assert.Equal(t, testKey(14), ix.CoinCreator)

	filled, err := fillFromInstruction(*ev, *ix)
	require.NoError(t, err)
	got, ok := filled.(PumpSwapCreatePoolEvent).Context()
	require.True(t, ok)
	assert.Equal(t, testKey(408), got)
}

func liquidityEventPayload() []byte {
	w := &le{}
	w.i64(1_700_000_200)
	for v := uint64(501); v <= 510; v++ {
		w.u64(v)
	}
	w.key(testPool).key(testUser).key(testKey(20)).key(testKey(21)).key(testKey(22))
	return w.bytes()
}

func TestDecodePumpSwapDepositEvent(t *testing.T) {
	payload := liquidityEventPayload()
	require.Len(t, payload, PumpSwapDepositEventMinLen)

	ev, err := DecodePumpSwapDepositEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, PumpSwapDepositEventData{
		Timestamp:              1_700_000_200,
		LpTokenAmountOut:       501,
		MaxBaseAmountIn:        502,
		MaxQuoteAmountIn:       503,
		UserBaseTokenReserves:  504,
		UserQuoteTokenReserves: 505,
		PoolBaseTokenReserves:  506,
		PoolQuoteTokenReserves: 507,
		BaseAmountIn:           508,
		QuoteAmountIn:          509,
		LpMintSupply:           510,
		Pool:                   testPool,
		User:                   testUser,
		UserBaseTokenAccount:   testKey(20),
		UserQuoteTokenAccount:  testKey(21),
		UserPoolTokenAccount:   testKey(22),
	}, ev.PumpSwapDepositEventData)

	ix, err := DecodePumpSwapDepositInstruction((&le{}).u64(501).u64(502).u64(503).bytes(), testKeys(420, 11))
	require.NoError(t, err)
	assert.Equal(t, PumpSwapDepositIxData{LpTokenAmountOut: 501, MaxBaseAmountIn: 502, MaxQuoteAmountIn: 503}, ix.PumpSwapDepositIxData)

	filled, err := fillFromInstruction(*ev, *ix)
	require.NoError(t, err)
	mints, ok := filled.(PumpSwapDepositEvent).Context()
	require.True(t, ok)
	assert.Equal(t, PumpSwapPoolMints{BaseMint: testKey(423), QuoteMint: testKey(424)}, mints)
}

func TestDecodePumpSwapWithdrawEvent(t *testing.T) {
	payload := liquidityEventPayload()
	require.Len(t, payload, PumpSwapWithdrawEventMinLen)

	ev, err := DecodePumpSwapWithdrawEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, PumpSwapWithdrawEventData{
		Timestamp:              1_700_000_200,
		LpTokenAmountIn:        501,
		MinBaseAmountOut:       502,
		MinQuoteAmountOut:      503,
		UserBaseTokenReserves:  504,
		UserQuoteTokenReserves: 505,
		PoolBaseTokenReserves:  506,
		PoolQuoteTokenReserves: 507,
		BaseAmountOut:          508,
		QuoteAmountOut:         509,
		LpMintSupply:           510,
		Pool:                   testPool,
		User:                   testUser,
		UserBaseTokenAccount:   testKey(20),
		UserQuoteTokenAccount:  testKey(21),
		UserPoolTokenAccount:   testKey(22),
	}, ev.PumpSwapWithdrawEventData)

	ix, err := DecodePumpSwapWithdrawInstruction((&le{}).u64(501).u64(502).u64(503).bytes(), testKeys(440, 11))
	require.NoError(t, err)
	assert.Equal(t, PumpSwapWithdrawIxData{LpTokenAmountIn: 501, MinBaseAmountOut: 502, MinQuoteAmountOut: 503}, ix.PumpSwapWithdrawIxData)

	filled, err := fillFromInstruction(*ev, *ix)
	require.NoError(t, err)
	mints, ok := filled.(PumpSwapWithdrawEvent).Context()
	require.True(t, ok)
	assert.Equal(t, PumpSwapPoolMints{BaseMint: testKey(443), QuoteMint: testKey(444)}, mints)

	// a deposit instruction does not fill a withdraw event
	dep, err := DecodePumpSwapDepositInstruction((&le{}).u64(1).u64(2).u64(3).bytes(), testKeys(420, 11))
	require.NoError(t, err)
	unfilled, err := fillFromInstruction(*ev, *dep)
	require.NoError(t, err)
	_, ok = unfilled.(PumpSwapWithdrawEvent).Context()
	assert.False(t, ok)
}

func decodeAccountFixture(t *testing.T, owner solana.PublicKey, data []byte) UnifiedEvent {
	t.Helper()
	ev, err := DefaultRegistry().DecodeAccount(AccountSnapshot{Pubkey: testKey(900), Owner: owner, Lamports: 1_461_600, Data: data})
	require.NoError(t, err)
	return ev
}

func TestDecodePumpSwapGlobalConfigAccount(t *testing.T) {
	w := (&le{}).raw(PumpSwapGlobalConfigDiscriminator[:])
	w.key(testKey(30)).u64(20).u64(5).u8(3)
	var recipients [8]solana.PublicKey
	for i := range recipients {
		recipients[i] = testKey(40 + i)
		w.key(recipients[i])
	}
	w.u64(15).key(testKey(31))
	require.Len(t, w.bytes(), 8+PumpSwapGlobalConfigMinLen)

	acc, ok := decodeAccountFixture(t, PUMPSWAP_PROGRAM_ID, w.bytes()).(PumpSwapGlobalConfigAccount)
	require.True(t, ok)
	assert.Equal(t, PumpSwapGlobalConfig{
		Admin:                        testKey(30),
		LpFeeBasisPoints:             20,
		ProtocolFeeBasisPoints:       5,
		DisableFlags:                 3,
		ProtocolFeeRecipients:        recipients,
		CoinCreatorFeeBasisPoints:    15,
		AdminSetCoinCreatorAuthority: testKey(31),
	}, acc.GlobalConfig)
	assert.Equal(t, testKey(900), acc.Pubkey)
}

func TestDecodePumpSwapPoolAccount(t *testing.T) {
	w := (&le{}).raw(PumpSwapPoolDiscriminator[:])
	w.u8(253).u16(2)
	w.key(testKey(50)).key(testBaseMint).key(WSOL_MINT).key(testKey(51)).key(testKey(52)).key(testKey(53))
	w.u64(987_654_321).key(testKey(54))
	require.Len(t, w.bytes(), 8+PumpSwapPoolMinLen)

	acc, ok := decodeAccountFixture(t, PUMPSWAP_PROGRAM_ID, w.bytes()).(PumpSwapPoolAccount)
	require.True(t, ok)
	assert.Equal(t, PumpSwapPool{
		PoolBump:              253,
		Index:                 2,
		Creator:               testKey(50),
		BaseMint:              testBaseMint,
		QuoteMint:             WSOL_MINT,
		LpMint:                testKey(51),
		PoolBaseTokenAccount:  testKey(52),
		PoolQuoteTokenAccount: testKey(53),
		LpSupply:              987_654_321,
		CoinCreator:           testKey(54),
	}, acc.Pool)
}

func TestDecodeRaydiumCpmmAmmConfigAccount(t *testing.T) {
	w := (&le{}).raw(RaydiumCpmmAmmConfigDiscriminator[:])
	w.u8(251).boolean(true).u16(4)
	w.u64(2_500).u64(120_000).u64(40_000).u64(150_000_000)
	w.key(testKey(60)).key(testKey(61))
	w.zeros(16 * 8)
	require.Len(t, w.bytes(), 8+RaydiumCpmmAmmConfigMinLen)

	acc, ok := decodeAccountFixture(t, RAYDIUM_CPMM_PROGRAM_ID, w.bytes()).(RaydiumCpmmAmmConfigAccount)
	require.True(t, ok)
	assert.Equal(t, RaydiumCpmmAmmConfig{
		Bump:              251,
		DisableCreatePool: true,
		Index:             4,
		TradeFeeRate:      2_500,
		ProtocolFeeRate:   120_000,
		FundFeeRate:       40_000,
		CreatePoolFee:     150_000_000,
		ProtocolOwner:     testKey(60),
		FundOwner:         testKey(61),
	}, acc.AmmConfig)
}

func TestDecodeRaydiumCpmmPoolStateAccount(t *testing.T) {
	w := (&le{}).raw(RaydiumCpmmPoolStateDiscriminator[:])
	for i := 0; i < 10; i++ {
		w.key(testKey(70 + i))
	}
	w.u8(255).u8(1).u8(9).u8(6).u8(9)
	for v := uint64(601); v <= 607; v++ {
		w.u64(v)
	}
	w.zeros(31 * 8)
	require.Len(t, w.bytes(), 8+RaydiumCpmmPoolStateMinLen)

	acc, ok := decodeAccountFixture(t, RAYDIUM_CPMM_PROGRAM_ID, w.bytes()).(RaydiumCpmmPoolStateAccount)
	require.True(t, ok)
	assert.Equal(t, RaydiumCpmmPoolState{
		AmmConfig:          testKey(70),
		PoolCreator:        testKey(71),
		Token0Vault:        testKey(72),
		Token1Vault:        testKey(73),
		LpMint:             testKey(74),
		Token0Mint:         testKey(75),
		Token1Mint:         testKey(76),
		Token0Program:      testKey(77),
		Token1Program:      testKey(78),
		ObservationKey:     testKey(79),
		AuthBump:           255,
		Status:             1,
		LpMintDecimals:     9,
		Mint0Decimals:      6,
		Mint1Decimals:      9,
		LpSupply:           601,
		ProtocolFeesToken0: 602,
		ProtocolFeesToken1: 603,
		FundFeesToken0:     604,
		FundFeesToken1:     605,
		OpenTime:           606,
		RecentEpoch:        607,
	}, acc.PoolState)
}

func TestDecodeRaydiumCpmmDeposit(t *testing.T) {
	ix, err := DecodeRaydiumCpmmDeposit((&le{}).u64(700).u64(701).u64(702).bytes(), testKeys(300, 13))
	require.NoError(t, err)
	assert.Equal(t, RaydiumCpmmDepositData{LpTokenAmount: 700, MaximumToken0Amount: 701, MaximumToken1Amount: 702}, ix.RaydiumCpmmDepositData)
	assert.Equal(t, RaydiumCpmmDepositAccounts{
		Owner:            testKey(300),
		Authority:        testKey(301),
		PoolState:        testKey(302),
		OwnerLpToken:     testKey(303),
		Token0Account:    testKey(304),
		Token1Account:    testKey(305),
		Token0Vault:      testKey(306),
		Token1Vault:      testKey(307),
		TokenProgram:     testKey(308),
		TokenProgram2022: testKey(309),
		Vault0Mint:       testKey(310),
		Vault1Mint:       testKey(311),
		LpMint:           testKey(312),
	}, ix.RaydiumCpmmDepositAccounts)
}

func TestDecodeRaydiumCpmmWithdraw(t *testing.T) {
	ix, err := DecodeRaydiumCpmmWithdraw((&le{}).u64(710).u64(711).u64(712).bytes(), testKeys(320, 14))
	require.NoError(t, err)
	assert.Equal(t, RaydiumCpmmWithdrawData{LpTokenAmount: 710, MinimumToken0Amount: 711, MinimumToken1Amount: 712}, ix.RaydiumCpmmWithdrawData)
	assert.Equal(t, RaydiumCpmmWithdrawAccounts{
		Owner:            testKey(320),
		Authority:        testKey(321),
		PoolState:        testKey(322),
		OwnerLpToken:     testKey(323),
		Token0Account:    testKey(324),
		Token1Account:    testKey(325),
		Token0Vault:      testKey(326),
		Token1Vault:      testKey(327),
		TokenProgram:     testKey(328),
		TokenProgram2022: testKey(329),
		Vault0Mint:       testKey(330),
		Vault1Mint:       testKey(331),
		LpMint:           testKey(332),
		MemoProgram:      testKey(333),
	}, ix.RaydiumCpmmWithdrawAccounts)
}

func TestDecodeRaydiumCpmmInitialize(t *testing.T) {
	ix, err := DecodeRaydiumCpmmInitialize((&le{}).u64(720).u64(721).u64(1_700_000_300).bytes(), testKeys(340, 20))
	require.NoError(t, err)
	assert.Equal(t, RaydiumCpmmInitializeData{InitAmount0: 720, InitAmount1: 721, OpenTime: 1_700_000_300}, ix.RaydiumCpmmInitializeData)
	assert.Equal(t, RaydiumCpmmInitializeAccounts{
		Creator:                testKey(340),
		AmmConfig:              testKey(341),
		Authority:              testKey(342),
		PoolState:              testKey(343),
		Token0Mint:             testKey(344),
		Token1Mint:             testKey(345),
		LpMint:                 testKey(346),
		CreatorToken0:          testKey(347),
		CreatorToken1:          testKey(348),
		CreatorLpToken:         testKey(349),
		Token0Vault:            testKey(350),
		Token1Vault:            testKey(351),
		CreatePoolFee:          testKey(352),
		ObservationState:       testKey(353),
		TokenProgram:           testKey(354),
		Token0Program:          testKey(355),
		Token1Program:          testKey(356),
		AssociatedTokenProgram: testKey(357),
		SystemProgram:          testKey(358),
		Rent:                   testKey(359),
	}, ix.RaydiumCpmmInitializeAccounts)
}

func TestDecodeRaydiumAmmV4Deposit(t *testing.T) {
	ix, err := DecodeRaydiumAmmV4Deposit((&le{}).u64(800).u64(801).u64(1).bytes(), testKeys(500, 14))
	require.NoError(t, err)
	assert.Equal(t, RaydiumAmmV4DepositData{MaxCoinAmount: 800, MaxPcAmount: 801, BaseSide: 1}, ix.RaydiumAmmV4DepositData)
	assert.Equal(t, RaydiumAmmV4DepositAccounts{
		TokenProgram:         testKey(500),
		Amm:                  testKey(501),
		AmmAuthority:         testKey(502),
		AmmOpenOrders:        testKey(503),
		AmmTargetOrders:      testKey(504),
		LpMintAddress:        testKey(505),
		PoolCoinTokenAccount: testKey(506),
		PoolPcTokenAccount:   testKey(507),
		SerumMarket:          testKey(508),
		UserCoinTokenAccount: testKey(509),
		UserPcTokenAccount:   testKey(510),
		UserLpTokenAccount:   testKey(511),
		UserOwner:            testKey(512),
		SerumEventQueue:      testKey(513),
	}, ix.RaydiumAmmV4DepositAccounts)
}

func TestDecodeRaydiumAmmV4Initialize2(t *testing.T) {
	data := (&le{}).u8(252).u64(1_700_000_400).u64(810).u64(811).bytes()
	require.Len(t, data, RaydiumAmmV4Initialize2MinLen)

	ix, err := DecodeRaydiumAmmV4Initialize2(data, testKeys(520, 21))
	require.NoError(t, err)
	assert.Equal(t, RaydiumAmmV4Initialize2Data{Nonce: 252, OpenTime: 1_700_000_400, InitPcAmount: 810, InitCoinAmount: 811}, ix.RaydiumAmmV4Initialize2Data)
	assert.Equal(t, RaydiumAmmV4Initialize2Accounts{
		TokenProgram:              testKey(520),
		SplAssociatedTokenAccount: testKey(521),
		SystemProgram:             testKey(522),
		Rent:                      testKey(523),
		Amm:                       testKey(524),
		AmmAuthority:              testKey(525),
		AmmOpenOrders:             testKey(526),
		LpMint:                    testKey(527),
		CoinMint:                  testKey(528),
		PcMint:                    testKey(529),
		PoolCoinTokenAccount:      testKey(530),
		PoolPcTokenAccount:        testKey(531),
		PoolWithdrawQueue:         testKey(532),
		AmmTargetOrders:           testKey(533),
		PoolTempLp:                testKey(534),
		SerumProgram:              testKey(535),
		SerumMarket:               testKey(536),
		UserWallet:                testKey(537),
		UserTokenCoin:             testKey(538),
		UserTokenPc:               testKey(539),
		UserLpTokenAccount:        testKey(540),
	}, ix.RaydiumAmmV4Initialize2Accounts)
}

func TestDecodeRaydiumAmmV4Withdraw(t *testing.T) {
	data := (&le{}).u64(820).bytes()

	ix, err := DecodeRaydiumAmmV4Withdraw(data, testKeys(560, 22))
	require.NoError(t, err)
	assert.Equal(t, uint64(820), ix.Amount)
	assert.Equal(t, RaydiumAmmV4WithdrawAccounts{
		TokenProgram:           testKey(560),
		Amm:                    testKey(561),
		AmmAuthority:           testKey(562),
		AmmOpenOrders:          testKey(563),
		AmmTargetOrders:        testKey(564),
		LpMintAddress:          testKey(565),
		PoolCoinTokenAccount:   testKey(566),
		PoolPcTokenAccount:     testKey(567),
		PoolWithdrawQueue:      testKey(568),
		PoolTempLpTokenAccount: testKey(569),
		SerumProgram:           testKey(570),
		SerumMarket:            testKey(571),
		SerumCoinVaultAccount:  testKey(572),
		SerumPcVaultAccount:    testKey(573),
		SerumVaultSigner:       testKey(574),
		UserLpTokenAccount:     testKey(575),
		UserCoinTokenAccount:   testKey(576),
		UserPcTokenAccount:     testKey(577),
		UserOwner:              testKey(578),
		SerumEventQueue:        testKey(579),
		SerumBids:              testKey(580),
		SerumAsks:              testKey(581),
	}, ix.RaydiumAmmV4WithdrawAccounts)

	// bids and asks are optional
	short, err := DecodeRaydiumAmmV4Withdraw(data, testKeys(560, 20))
	require.NoError(t, err)
	assert.Equal(t, testKey(579), short.SerumEventQueue)
	assert.True(t, short.SerumBids.IsZero())
	assert.True(t, short.SerumAsks.IsZero())
}

func TestDecodeRaydiumAmmV4AmmInfoAccount(t *testing.T) {
	w := &le{}
	w.u64(uint64(RaydiumAmmV4AmmInfoTag))
	for v := uint64(102); v <= 116; v++ { // nonce .. sys_decimal_value
		w.u64(v)
	}
	for v := uint64(201); v <= 208; v++ { // fees
		w.u64(v)
	}
	for v := uint64(301); v <= 308; v++ {
		w.u64(v)
	}
	w.u128(309, 1).u128(310, 2).u64(311).u128(312, 3).u128(313, 4).u64(314)
	for i := 0; i < 9; i++ {
		w.key(testKey(80 + i))
	}
	w.zeros(8 * 8)
	w.key(testKey(89))
	w.u64(401).u64(402).u64(403).u64(0)
	require.Len(t, w.bytes(), RaydiumAmmV4AmmInfoMinLen)

	acc, ok := decodeAccountFixture(t, RAYDIUM_AMM_V4_PROGRAM_ID, w.bytes()).(RaydiumAmmV4AmmInfoAccount)
	require.True(t, ok)
	assert.Equal(t, RaydiumAmmV4AmmInfo{
		Status:             6,
		Nonce:              102,
		OrderNum:           103,
		Depth:              104,
		CoinDecimals:       105,
		PcDecimals:         106,
		State:              107,
		ResetFlag:          108,
		MinSize:            109,
		VolMaxCutRatio:     110,
		AmountWave:         111,
		CoinLotSize:        112,
		PcLotSize:          113,
		MinPriceMultiplier: 114,
		MaxPriceMultiplier: 115,
		SysDecimalValue:    116,
		Fees: RaydiumAmmV4Fees{
			MinSeparateNumerator:   201,
			MinSeparateDenominator: 202,
			TradeFeeNumerator:      203,
			TradeFeeDenominator:    204,
			PnlNumerator:           205,
			PnlDenominator:         206,
			SwapFeeNumerator:       207,
			SwapFeeDenominator:     208,
		},
		StateData: RaydiumAmmV4OutPutData{
			NeedTakePnlCoin:     301,
			NeedTakePnlPc:       302,
			TotalPnlPc:          303,
			TotalPnlCoin:        304,
			PoolOpenTime:        305,
			PunishPcAmount:      306,
			PunishCoinAmount:    307,
			OrderbookToInitTime: 308,
			SwapCoinInAmount:    ag_binary.Uint128{Lo: 309, Hi: 1},
			SwapPcOutAmount:     ag_binary.Uint128{Lo: 310, Hi: 2},
			SwapAccPcFee:        311,
			SwapPcInAmount:      ag_binary.Uint128{Lo: 312, Hi: 3},
			SwapCoinOutAmount:   ag_binary.Uint128{Lo: 313, Hi: 4},
			SwapAccCoinFee:      314,
		},
		CoinVault:     testKey(80),
		PcVault:       testKey(81),
		CoinVaultMint: testKey(82),
		PcVaultMint:   testKey(83),
		LpMint:        testKey(84),
		OpenOrders:    testKey(85),
		Market:        testKey(86),
		MarketProgram: testKey(87),
		TargetOrders:  testKey(88),
		AmmOwner:      testKey(89),
		LpAmount:      401,
		ClientOrderId: 402,
		RecentEpoch:   403,
	}, acc.AmmInfo)

	// u128 counters print as decimal strings
	assert.Equal(t, "18446744073709551925", acc.AmmInfo.StateData.SwapCoinInAmount.String())
	out, err := json.Marshal(acc.AmmInfo.StateData.SwapCoinInAmount)
	require.NoError(t, err)
	assert.Equal(t, `"18446744073709551925"`, string(out))
}
