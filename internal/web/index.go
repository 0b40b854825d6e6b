package web

const indexHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Seed Farm</title>
<style>
body { font-family: system-ui, sans-serif; background: #101418; color: #e6e6e6; margin: 0; }
header { display: flex; justify-content: space-between; align-items: center; padding: 12px 24px; background: #1b222a; }
main { max-width: 520px; margin: 32px auto; padding: 24px; background: #1b222a; border-radius: 8px; }
button { background: transparent; color: inherit; border: 1px solid #8aa; border-radius: 4px; padding: 6px 14px; cursor: pointer; }
.row { display: flex; justify-content: space-between; margin: 8px 0; }
.actions { display: flex; gap: 8px; margin-top: 16px; }
#error { color: #f77; min-height: 1.2em; }
</style>
</head>
<body>
<header>
  <span>1 SEED = <b id="price">0.00000</b> FTM</span>
  <button id="wallet">connect</button>
</header>
<main>
  <div class="row"><b>APR</b><span id="apr">-</span></div>
  <div class="row"><b>Your Balance</b><span id="balance">0.000</span></div>
  <div class="row"><b>Your Stake</b><span id="stake">0.00000</span></div>
  <div class="row"><b>Your Reward</b><span id="reward">0.00000</span></div>
  <input id="amount" placeholder="Value to stake">
  <div class="actions" id="actions"></div>
  <p id="error"></p>
  <p id="tx"></p>
</main>
<script>
const labels = { approve: "approve SEED", stake: "stake SEED", exit: "withdraw" };
let connected = false;

function render(v) {
  connected = v.connected;
  document.getElementById("price").textContent = v.price;
  document.getElementById("apr").textContent = v.apr === "-" ? "-" : v.apr + " %";
  document.getElementById("balance").textContent = v.balance + " SEED/FTM spLP";
  document.getElementById("stake").textContent = v.stake + " SEED/FTM spLP";
  document.getElementById("reward").textContent = v.reward + " SEED";
  document.getElementById("wallet").textContent = v.connected ? v.short_account : "connect";
  const box = document.getElementById("actions");
  box.innerHTML = "";
  for (const a of v.actions) {
    const b = document.createElement("button");
    b.textContent = labels[a];
    b.onclick = () => act(a);
    box.appendChild(b);
  }
}

async function post(path, body) {
  const res = await fetch(path, { method: "POST", headers: { "Content-Type": "application/json" }, body: JSON.stringify(body || {}) });
  const data = await res.json();
  document.getElementById("error").textContent = res.ok ? "" : data.error;
  return res.ok ? data : null;
}

async function act(a) {
  const sub = await post("/actions/" + a, { amount: document.getElementById("amount").value });
  if (sub) document.getElementById("tx").textContent = a + " submitted: " + sub.tx_hash;
}

document.getElementById("wallet").onclick = async () => {
  const v = await post(connected ? "/wallet/disconnect" : "/wallet/connect");
  if (v) render(v);
};

new EventSource("/view/stream").addEventListener("view", (e) => render(JSON.parse(e.data)));
</script>
</body>
</html>
`
